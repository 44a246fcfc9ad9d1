package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ib-77/gridsum/internal/store"
	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/reduce"
)

// SumOptions holds flags for the sum command.
type SumOptions struct {
	*RootOptions
	Grid     GridOptions
	Reduce   ReduceFlags
	Database string
}

// DegradedView is the output form of a degraded partition.
type DegradedView struct {
	Partition int    `json:"partition"`
	Error     string `json:"error"`
}

// SumResult is the output of the sum command.
type SumResult struct {
	RunID       string          `json:"run_id"`
	Strategy    string          `json:"strategy"`
	Workers     int             `json:"workers"`
	Rows        int             `json:"rows"`
	Cells       int             `json:"cells"`
	Fingerprint string          `json:"fingerprint"`
	Total       float64         `json:"total"`
	Partitions  []PartitionView `json:"partitions"`
	Degraded    []DegradedView  `json:"degraded,omitempty"`
	ElapsedMS   float64         `json:"elapsed_ms"`
}

// NewSumCommand creates the sum command.
func NewSumCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SumOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sum",
		Short: "Sum a grid with one strategy",
		Long: `Sum every cell of a grid with the selected strategy.

The grid is read from a YAML or CSV file, or generated with --rows/--cols.
With --db the run is appended to the history database.

Examples:
  gridsum sum --grid grid.yaml --workers 3
  gridsum sum --rows 1000 --cols 10 --strategy fully-parallel
  gridsum sum --grid grid.csv --strategy bounded-pipeline --depth 2 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(cmd, opts)
		},
	}

	opts.Grid.addFlags(cmd)
	opts.Reduce.addFlags(cmd, true)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runSum(cmd *cobra.Command, opts *SumOptions) error {
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
	strategy, _ := reduce.ParseStrategy(cfg.Strategy)
	r, err := reduce.New(strategy, reduceOpts...)
	if err != nil {
		return formatter.Fail(exitFor("invalid settings", err))
	}

	formatter.VerboseLog("Summing %d rows with %s on %d workers", g.Rows(), strategy, cfg.Workers)
	report, err := r.Reduce(cmd.Context(), g, cfg.Workers)
	if err != nil {
		return formatter.Fail(exitFor("reduction failed", err))
	}
	formatter.VerboseLog("Run %s finished in %v", report.RunID, report.Elapsed)

	fingerprint := grid.Fingerprint(g)
	if cfg.Database != "" {
		if err := recordReports(cmd.Context(), cfg.Database, fingerprint, report); err != nil {
			return formatter.Fail(err)
		}
		formatter.VerboseLog("Recorded run in %s", cfg.Database)
	}

	return formatter.Success(newSumResult(report, g.Len(), fingerprint))
}

func newSumResult(report reduce.Report, cells int, fingerprint uint64) SumResult {
	res := SumResult{
		RunID:       report.RunID.String(),
		Strategy:    report.Strategy.String(),
		Workers:     report.Workers,
		Rows:        report.Rows,
		Cells:       cells,
		Fingerprint: fmt.Sprintf("%016x", fingerprint),
		Total:       report.Total,
		Partitions:  viewPartitions(report.Partitions, report.Rows),
		ElapsedMS:   float64(report.Elapsed) / float64(time.Millisecond),
	}
	for _, d := range report.Degraded {
		res.Degraded = append(res.Degraded, DegradedView{Partition: d.Partition.Index, Error: d.Err.Error()})
	}
	return res
}

// renderText leaves out the run id and timing so the output is stable for
// a given input; --verbose prints both.
func (r SumResult) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "total:    %v\n", decimal(r.Total))
	p.Fprintf(w, "strategy: %s\n", r.Strategy)
	p.Fprintf(w, "grid:     %d rows, %d cells, fingerprint %s\n", r.Rows, r.Cells, r.Fingerprint)
	p.Fprintf(w, "workers:  %d\n", r.Workers)
	for _, v := range r.Partitions {
		p.Fprintf(w, "  %s\n", v.text(p))
	}
	if len(r.Degraded) > 0 {
		p.Fprintf(w, "degraded: %d partial(s) counted as zero\n", len(r.Degraded))
		for _, d := range r.Degraded {
			p.Fprintf(w, "  #%d: %s\n", d.Partition, d.Error)
		}
	}
}

// recordReports stores reports of one grid in the history database.
func recordReports(ctx context.Context, path string, fingerprint uint64, reports ...reduce.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	now := time.Now()
	runs := make([]store.Run, 0, len(reports))
	for _, r := range reports {
		runs = append(runs, store.FromReport(r, fingerprint, now))
	}
	if err := st.Record(ctx, runs...); err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	return nil
}
