package reduce

import (
	"fmt"

	"github.com/ib-77/gridsum/pkg/types"
)

// Strategy names a reduction strategy.
type Strategy string

const (
	ExplicitThread  Strategy = "explicit-thread"
	BoundedPipeline Strategy = "bounded-pipeline"
	FullyParallel   Strategy = "fully-parallel"
)

// Strategies returns every strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{ExplicitThread, BoundedPipeline, FullyParallel}
}

func (s Strategy) String() string {
	return string(s)
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case ExplicitThread, BoundedPipeline, FullyParallel:
		return true
	default:
		return false
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown strategy %q (want one of %v)", types.ErrInvalidArgument, name, Strategies())
	}
	return s, nil
}
