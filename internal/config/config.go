// Package config loads the gridsum CLI configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ib-77/gridsum/pkg/counter"
	"github.com/ib-77/gridsum/pkg/partition"
	"github.com/ib-77/gridsum/pkg/reduce"
	"github.com/ib-77/gridsum/pkg/types"
)

// Config holds every setting the CLI understands. Flags override file values.
type Config struct {
	Workers       int           `yaml:"workers"`
	Strategy      string        `yaml:"strategy"`
	Policy        string        `yaml:"policy"`
	PipelineDepth int           `yaml:"pipeline_depth"`
	Database      string        `yaml:"database"`
	Counter       CounterConfig `yaml:"counter"`
}

type CounterConfig struct {
	Interval time.Duration `yaml:"interval"`
	Start    int64         `yaml:"start"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		Strategy: string(reduce.ExplicitThread),
		Policy:   partition.PolicyRemainderFirst.String(),
		Counter: CounterConfig{
			Interval: counter.DefaultInterval,
		},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes data on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode config: %v", types.ErrInvalidArgument, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 || c.Workers > partition.MaxWorkers {
		errs = append(errs, fmt.Errorf("workers must be in [1, %d], got %d", partition.MaxWorkers, c.Workers))
	}
	if _, err := reduce.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := partition.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.PipelineDepth < 0 {
		errs = append(errs, fmt.Errorf("pipeline_depth must not be negative, got %d", c.PipelineDepth))
	}
	if c.Counter.Interval <= 0 {
		errs = append(errs, fmt.Errorf("counter.interval must be positive, got %v", c.Counter.Interval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: invalid config: %w", types.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}

// ReduceOptions converts the strategy-independent settings into reduce
// options.
func (c Config) ReduceOptions() ([]reduce.Option, error) {
	policy, err := partition.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	return []reduce.Option{
		reduce.WithPolicy(policy),
		reduce.WithPipelineDepth(c.PipelineDepth),
	}, nil
}
