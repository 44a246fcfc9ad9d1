package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ib-77/gridsum/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database    string
	Strategy    string
	Fingerprint string
	Limit       int
}

// HistoryEntry is one stored run.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Strategy    string    `json:"strategy"`
	Workers     int       `json:"workers"`
	Rows        int       `json:"rows"`
	Fingerprint string    `json:"fingerprint"`
	Total       float64   `json:"total"`
	Degraded    int       `json:"degraded"`
	ElapsedMS   float64   `json:"elapsed_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Runs []HistoryEntry `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded by sum --db and compare --db, newest first.

Examples:
  gridsum history --db history.db
  gridsum history --db history.db --strategy fully-parallel --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database (default from config)")
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "", "only runs of this strategy")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only runs on the grid with this fingerprint")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.config()
	if err != nil {
		return formatter.Fail(err)
	}
	path := cfg.Database
	if cmd.Flags().Changed("db") {
		path = opts.Database
	}
	if path == "" {
		return formatter.Fail(NewExitError(ExitCommandError, "no database: set --db or database in the config"))
	}
	if opts.Limit < 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "limit must not be negative"))
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	runs, err := st.List(cmd.Context(), store.Filter{
		Strategy:    opts.Strategy,
		Fingerprint: opts.Fingerprint,
		Limit:       opts.Limit,
	})
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to list runs", err))
	}
	formatter.VerboseLog("Found %d run(s) in %s", len(runs), path)

	res := HistoryResult{Runs: make([]HistoryEntry, 0, len(runs))}
	for _, r := range runs {
		res.Runs = append(res.Runs, HistoryEntry{
			ID:          r.ID,
			Strategy:    r.Strategy,
			Workers:     r.Workers,
			Rows:        r.Rows,
			Fingerprint: r.Fingerprint,
			Total:       r.Total,
			Degraded:    r.Degraded,
			ElapsedMS:   float64(r.Elapsed) / float64(time.Millisecond),
			CreatedAt:   r.CreatedAt,
		})
	}
	return formatter.Success(res)
}

func (r HistoryResult) renderText(p *message.Printer, w io.Writer) {
	if len(r.Runs) == 0 {
		p.Fprintf(w, "no runs recorded\n")
		return
	}
	for _, e := range r.Runs {
		p.Fprintf(w, "%s  %-16s  %-8.8s  %d workers  %d rows  total %v",
			e.CreatedAt.Format(time.DateTime), e.Strategy, e.ID, e.Workers, e.Rows, decimal(e.Total))
		if e.Degraded > 0 {
			p.Fprintf(w, "  %d degraded", e.Degraded)
		}
		p.Fprintf(w, "\n")
	}
}
