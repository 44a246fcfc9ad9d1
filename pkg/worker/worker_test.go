package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/partition"
)

func TestCompute(t *testing.T) {
	g := grid.MustNew([][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}})

	tests := []struct {
		name string
		p    partition.Partition
		want float64
	}{
		{"first half", partition.Partition{Start: 0, Count: 2}, 10},
		{"second half", partition.Partition{Index: 1, Start: 2, Count: 2}, 26},
		{"clamped tail", partition.Partition{Start: 3, Count: 5}, 15},
		{"out of range", partition.Partition{Start: 6, Count: 3}, 0},
		{"empty", partition.Partition{Start: 1, Count: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(g, tt.p))
		})
	}
}

func TestCompute_Ragged(t *testing.T) {
	g := grid.MustNew([][]float64{{1}, {}, {2, 3, 4}})
	assert.Equal(t, 10.0, Compute(g, partition.Partition{Start: 0, Count: 3}))
}

func TestDefault_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Default(ctx, grid.MustNew([][]float64{{1}}), partition.Partition{Count: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSafe(t *testing.T) {
	u := Safe(func(context.Context, *grid.Grid, partition.Partition) (float64, error) {
		panic("index out of range")
	})

	_, err := u(context.Background(), grid.MustNew(nil), partition.Partition{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPanicked)

	ok := Safe(Default)
	v, err := ok(context.Background(), grid.MustNew([][]float64{{2, 3}}), partition.Partition{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}
