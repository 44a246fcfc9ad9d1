// Package cli implements the gridsum command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ib-77/gridsum/internal/config"
	"github.com/ib-77/gridsum/internal/logging"
	"github.com/ib-77/gridsum/internal/metrics"
	"github.com/ib-77/gridsum/pkg/types"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Metrics    bool // dump Prometheus metrics to stderr after the command

	cfg      *config.Config
	registry *prometheus.Registry
	metrics  types.MetricsCollector
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gridsum CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gridsum",
		Short: "gridsum - parallel grid reduction",
		Long: `Sum a grid of numbers by splitting its rows between workers.

Three strategies are available: explicit-thread (one task per partition,
joined at a barrier), bounded-pipeline (start-then-join, degrades failed
partials to zero) and fully-parallel (unordered fold).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.dumpMetrics(cmd.ErrOrStderr())
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics to stderr when done")

	cmd.AddCommand(NewSumCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewPartitionsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// config loads the config file once. Commands built without the root
// command still get the defaults.
func (o *RootOptions) config() (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.cfg = &cfg
	return cfg, nil
}

// logger writes text records to w: debug level with --verbose, warnings
// otherwise.
func (o *RootOptions) logger(w io.Writer) types.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return logging.NewSlog(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// collector returns the Prometheus collector when --metrics is set and a
// no-op collector otherwise.
func (o *RootOptions) collector() types.MetricsCollector {
	if o.metrics != nil {
		return o.metrics
	}
	if !o.Metrics {
		o.metrics = metrics.NewNop()
		return o.metrics
	}
	o.registry = prometheus.NewRegistry()
	o.metrics = metrics.NewPrometheus(o.registry, "")
	return o.metrics
}

func (o *RootOptions) dumpMetrics(w io.Writer) error {
	if o.registry == nil {
		return nil
	}
	families, err := o.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
