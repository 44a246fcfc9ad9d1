package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ib-77/gridsum/internal/config"
	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/partition"
	"github.com/ib-77/gridsum/pkg/reduce"
)

// GridOptions selects the input grid: a file, or a generated rows x cols
// grid whose cell (r, c) holds r*cols+c+1.
type GridOptions struct {
	Path string
	Rows int
	Cols int
}

func (g *GridOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.Path, "grid", "", "grid file (.yaml, .yml or .csv)")
	cmd.Flags().IntVar(&g.Rows, "rows", 0, "generate a grid with this many rows")
	cmd.Flags().IntVar(&g.Cols, "cols", 1, "columns of the generated grid")
	cmd.MarkFlagsMutuallyExclusive("grid", "rows")
	cmd.MarkFlagsOneRequired("grid", "rows")
}

func (g *GridOptions) load() (*grid.Grid, error) {
	if g.Path == "" {
		cols := g.Cols
		out, err := grid.Generate(g.Rows, cols, func(r, c int) float64 {
			return float64(r*cols + c + 1)
		})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to generate grid", err)
		}
		return out, nil
	}

	f, err := os.Open(g.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open grid", err)
	}
	defer f.Close()

	var out *grid.Grid
	switch ext := strings.ToLower(filepath.Ext(g.Path)); ext {
	case ".yaml", ".yml":
		out, err = grid.LoadYAML(f)
	case ".csv":
		out, err = grid.LoadCSV(f)
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unsupported grid file extension %q", ext))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load grid", err)
	}
	return out, nil
}

// ReduceFlags are the reduction settings a flag can override in the config.
type ReduceFlags struct {
	Workers  int
	Strategy string
	Policy   string
	Depth    int
}

func (r *ReduceFlags) addFlags(cmd *cobra.Command, withStrategy bool) {
	cmd.Flags().IntVarP(&r.Workers, "workers", "w", 0, "number of workers (default from config, else CPU count)")
	if withStrategy {
		cmd.Flags().StringVarP(&r.Strategy, "strategy", "s", "",
			fmt.Sprintf("reduction strategy %v", reduce.Strategies()))
	}
	cmd.Flags().StringVar(&r.Policy, "policy", "", "partition policy (remainder-first|even)")
	cmd.Flags().IntVar(&r.Depth, "depth", 0, "units bounded-pipeline may run at once")
}

// apply overlays the flags the user set on cfg and validates the result.
func (r *ReduceFlags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = r.Workers
	}
	if flags.Changed("strategy") {
		cfg.Strategy = r.Strategy
	}
	if flags.Changed("policy") {
		cfg.Policy = r.Policy
	}
	if flags.Changed("depth") {
		cfg.PipelineDepth = r.Depth
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid settings", err)
	}
	return cfg, nil
}

// reduceOptions builds the reduce options shared by sum and compare.
func (o *RootOptions) reduceOptions(cmd *cobra.Command, cfg config.Config) ([]reduce.Option, error) {
	opts, err := cfg.ReduceOptions()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid settings", err)
	}
	return append(opts,
		reduce.WithLogger(o.logger(cmd.ErrOrStderr())),
		reduce.WithMetrics(o.collector()),
	), nil
}

// PartitionView is the output form of a partition.
type PartitionView struct {
	Index  int  `json:"index"`
	Start  int  `json:"start"`
	Count  int  `json:"count"`
	First  int  `json:"first"`
	Last   int  `json:"last"`
	Rows   int  `json:"rows"`
	Active bool `json:"active"`
}

func viewPartitions(parts []partition.Partition, rowCount int) []PartitionView {
	views := make([]PartitionView, len(parts))
	for i, p := range parts {
		lo, hi := p.Clamp(rowCount)
		views[i] = PartitionView{
			Index:  p.Index,
			Start:  p.Start,
			Count:  p.Count,
			First:  lo,
			Last:   hi - 1,
			Rows:   hi - lo,
			Active: hi > lo,
		}
	}
	return views
}

func (v PartitionView) text(p *message.Printer) string {
	if !v.Active {
		return p.Sprintf("#%d: idle, starts at %d", v.Index, v.Start)
	}
	return p.Sprintf("#%d: rows %d-%d (%d)", v.Index, v.First, v.Last, v.Rows)
}
