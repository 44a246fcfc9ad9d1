package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ib-77/gridsum/pkg/partition"
)

// PartitionsOptions holds flags for the partitions command.
type PartitionsOptions struct {
	*RootOptions
	Rows    int
	Workers int
	Policy  string
}

// PartitionsResult is the output of the partitions command.
type PartitionsResult struct {
	Rows       int             `json:"rows"`
	Workers    int             `json:"workers"`
	Policy     string          `json:"policy"`
	Active     int             `json:"active"`
	Partitions []PartitionView `json:"partitions"`
}

// NewPartitionsCommand creates the partitions command.
func NewPartitionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PartitionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "partitions",
		Short: "Print how rows are split between workers",
		Long: `Print the partition plan for a row count and worker count without
reading any grid.

With the default remainder-first policy every partition gets
rows%workers + rows/workers rows, so trailing partitions may be idle.

Examples:
  gridsum partitions --rows 5 --workers 3
  gridsum partitions --rows 10 --workers 4 --policy even`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartitions(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "number of rows (required)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "number of workers (default from config, else CPU count)")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "partition policy (remainder-first|even)")
	_ = cmd.MarkFlagRequired("rows")

	return cmd
}

func runPartitions(cmd *cobra.Command, opts *PartitionsOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.config()
	if err != nil {
		return formatter.Fail(err)
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = opts.Policy
	}

	policy, err := partition.ParsePolicy(cfg.Policy)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "invalid settings", err))
	}
	parts, err := partition.SplitWith(policy, opts.Rows, cfg.Workers)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "invalid settings", err))
	}

	views := viewPartitions(parts, opts.Rows)
	active := 0
	for _, v := range views {
		if v.Active {
			active++
		}
	}

	return formatter.Success(PartitionsResult{
		Rows:       opts.Rows,
		Workers:    cfg.Workers,
		Policy:     policy.String(),
		Active:     active,
		Partitions: views,
	})
}

func (r PartitionsResult) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "%d rows, %d workers, policy %s: %d active\n", r.Rows, r.Workers, r.Policy, r.Active)
	for _, v := range r.Partitions {
		p.Fprintf(w, "  %s\n", v.text(p))
	}
}
