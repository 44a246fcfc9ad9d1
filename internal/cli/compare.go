package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/reduce"
	"github.com/ib-77/gridsum/pkg/rop"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Grid     GridOptions
	Reduce   ReduceFlags
	Database string
}

// CompareEntry is one strategy's line in the comparison.
type CompareEntry struct {
	Strategy  string  `json:"strategy"`
	Total     float64 `json:"total"`
	Diff      float64 `json:"diff"`
	Matches   bool    `json:"matches"`
	Degraded  int     `json:"degraded"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

// CompareResult is the output of the compare command.
type CompareResult struct {
	Rows        int            `json:"rows"`
	Workers     int            `json:"workers"`
	Fingerprint string         `json:"fingerprint"`
	Sequential  float64        `json:"sequential"`
	Entries     []CompareEntry `json:"strategies"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every strategy on the same grid",
		Long: `Run every strategy on the same grid, one after the other, and show
their totals next to the sequential sum.

A strategy matches when its total is within floating point rounding of the
sequential sum. bounded-pipeline totals that include degraded partials do
not match. The command fails if any strategy fails.

Examples:
  gridsum compare --rows 10000 --cols 8 --workers 4
  gridsum compare --grid grid.yaml --db history.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts)
		},
	}

	opts.Grid.addFlags(cmd)
	opts.Reduce.addFlags(cmd, false)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the successful runs in this SQLite database")

	return cmd
}

func runCompare(cmd *cobra.Command, opts *CompareOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.config()
	if err != nil {
		return formatter.Fail(err)
	}
	cfg, err = opts.Reduce.apply(cmd, cfg)
	if err != nil {
		return formatter.Fail(err)
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = opts.Database
	}

	g, err := opts.Grid.load()
	if err != nil {
		return formatter.Fail(err)
	}
	reduceOpts, err := opts.reduceOptions(cmd, cfg)
	if err != nil {
		return formatter.Fail(err)
	}

	formatter.VerboseLog("Comparing %d strategies on %d rows with %d workers",
		len(reduce.Strategies()), g.Rows(), cfg.Workers)
	reports, runErr := reduce.Compare(cmd.Context(), g, cfg.Workers, reduceOpts...)
	if reports == nil {
		return formatter.Fail(exitFor("comparison failed", runErr))
	}

	fingerprint := grid.Fingerprint(g)
	res := newCompareResult(g, cfg.Workers, fingerprint, reports, runErr)

	if cfg.Database != "" {
		var ok []reduce.Report
		for _, r := range reports {
			if r.Strategy != "" {
				ok = append(ok, r)
			}
		}
		if err := recordReports(cmd.Context(), cfg.Database, fingerprint, ok...); err != nil {
			return formatter.Fail(err)
		}
		formatter.VerboseLog("Recorded %d run(s) in %s", len(ok), cfg.Database)
	}

	if runErr != nil {
		if err := formatter.Success(res); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "comparison failed", runErr)
	}
	return formatter.Success(res)
}

func newCompareResult(g *grid.Grid, workers int, fingerprint uint64, reports []reduce.Report, runErr error) CompareResult {
	seq := grid.Sequential(g)
	res := CompareResult{
		Rows:        g.Rows(),
		Workers:     workers,
		Fingerprint: fmt.Sprintf("%016x", fingerprint),
		Sequential:  seq,
	}

	failures := failuresByStrategy(runErr)
	for i, s := range reduce.Strategies() {
		r := reports[i]
		entry := CompareEntry{Strategy: s.String()}
		if r.Strategy == "" {
			entry.Error = failures[s]
			res.Entries = append(res.Entries, entry)
			continue
		}
		entry.Total = r.Total
		entry.Diff = r.Total - seq
		entry.Matches = closeTo(r.Total, seq)
		entry.Degraded = len(r.Degraded)
		entry.ElapsedMS = float64(r.Elapsed) / float64(time.Millisecond)
		res.Entries = append(res.Entries, entry)
	}
	return res
}

// failuresByStrategy splits the joined error of reduce.Compare back into
// one message per strategy.
func failuresByStrategy(err error) map[reduce.Strategy]string {
	out := make(map[reduce.Strategy]string)
	for _, e := range rop.GetErrors(err) {
		var rerr *reduce.Error
		if errors.As(e, &rerr) {
			out[rerr.Strategy] = e.Error()
		}
	}
	return out
}

// closeTo compares with a relative tolerance since the strategies add the
// partials in different orders.
func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func (r CompareResult) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "grid: %d rows, fingerprint %s, %d workers\n", r.Rows, r.Fingerprint, r.Workers)
	p.Fprintf(w, "%-18s %v\n", "sequential", decimal(r.Sequential))
	for _, e := range r.Entries {
		if e.Error != "" {
			p.Fprintf(w, "%-18s FAILED: %s\n", e.Strategy, e.Error)
			continue
		}
		mark := "ok"
		if !e.Matches {
			mark = p.Sprintf("differs by %v", decimal(e.Diff))
		}
		p.Fprintf(w, "%-18s %v  %s  (%.3fms", e.Strategy, decimal(e.Total), mark, e.ElapsedMS)
		if e.Degraded > 0 {
			p.Fprintf(w, ", %d degraded", e.Degraded)
		}
		p.Fprintf(w, ")\n")
	}
}
