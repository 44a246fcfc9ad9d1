package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ib-77/gridsum/pkg/counter"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Duration time.Duration
	Interval time.Duration
	Start    int64
	Down     bool
}

// CountResult is the JSON output of the count command. Text output prints
// each value as it is published.
type CountResult struct {
	Ticks []int64 `json:"ticks"`
	Final int64   `json:"final"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Run the background counter",
		Long: `Run the background counter and print every value it publishes.

The counter runs for --duration, or until interrupted when no duration is
given.

Examples:
  gridsum count --duration 1s
  gridsum count --interval 50ms --start 10 --down`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, opts)
		},
	}

	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", counter.DefaultInterval, "time between ticks")
	cmd.Flags().Int64Var(&opts.Start, "start", 0, "first value")
	cmd.Flags().BoolVar(&opts.Down, "down", false, "count downwards")

	return cmd
}

func runCount(cmd *cobra.Command, opts *CountOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.config()
	if err != nil {
		return formatter.Fail(err)
	}
	interval, start := cfg.Counter.Interval, cfg.Counter.Start
	if cmd.Flags().Changed("interval") {
		interval = opts.Interval
	}
	if cmd.Flags().Changed("start") {
		start = opts.Start
	}
	if opts.Duration < 0 {
		return formatter.Fail(NewExitError(ExitCommandError,
			fmt.Sprintf("duration must not be negative, got %v", opts.Duration)))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	dir := counter.Up
	if opts.Down {
		dir = counter.Down
	}

	var ticks []int64
	text := formatter.Format != "json"
	out := formatter.Writer
	c, err := counter.Start(ctx, interval,
		counter.WithStart(start),
		counter.WithDirection(dir),
		counter.WithLogger(opts.logger(cmd.ErrOrStderr())),
		counter.WithMetrics(opts.collector()),
		counter.WithOnTick(func(v int64) {
			ticks = append(ticks, v)
			if text {
				fmt.Fprintln(out, v)
			}
		}),
	)
	if err != nil {
		return formatter.Fail(exitFor("failed to start counter", err))
	}
	<-c.Done()
	c.Stop()

	if text {
		formatter.VerboseLog("Counter stopped at %d after %d tick(s)", c.Value(), len(ticks))
		return nil
	}
	return formatter.Success(CountResult{Ticks: ticks, Final: c.Value()})
}
