package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/gridsum/pkg/types"
)

func TestSplit_FourRowsTwoWorkers(t *testing.T) {
	parts, err := Split(4, 2)
	require.NoError(t, err)

	assert.Equal(t, []Partition{
		{Index: 0, Start: 0, Count: 2},
		{Index: 1, Start: 2, Count: 2},
	}, parts)
}

func TestSplit_FiveRowsThreeWorkers(t *testing.T) {
	parts, err := Split(5, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, Size(5, 3))
	assert.Equal(t, []Partition{
		{Index: 0, Start: 0, Count: 3},
		{Index: 1, Start: 3, Count: 3},
		{Index: 2, Start: 6, Count: 3},
	}, parts)

	assert.True(t, parts[1].Active(5))
	assert.False(t, parts[2].Active(5))

	lo, hi := parts[1].Clamp(5)
	assert.Equal(t, 3, lo)
	assert.Equal(t, 5, hi)

	lo, hi = parts[2].Clamp(5)
	assert.Equal(t, lo, hi)
}

func TestSplit_InvalidArguments(t *testing.T) {
	for _, w := range []int{0, -1, -10} {
		_, err := Split(4, w)
		assert.ErrorIs(t, err, types.ErrInvalidArgument, "workers=%d", w)
	}

	_, err := Split(-1, 2)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	for _, w := range []int{MaxWorkers + 1, 1 << 50} {
		_, err = Split(4, w)
		assert.ErrorIs(t, err, types.ErrInvalidArgument, "workers=%d", w)
	}

	parts, err := Split(1, MaxWorkers)
	require.NoError(t, err)
	assert.Len(t, parts, MaxWorkers)

	_, err = SplitWith(Policy(42), 4, 2)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestSplit_ZeroRows(t *testing.T) {
	parts, err := Split(0, 4)
	require.NoError(t, err)
	require.Len(t, parts, 4)
	for _, p := range parts {
		assert.False(t, p.Active(0))
	}
}

func TestSplitEven(t *testing.T) {
	parts, err := SplitEven(5, 3)
	require.NoError(t, err)

	assert.Equal(t, []Partition{
		{Index: 0, Start: 0, Count: 2},
		{Index: 1, Start: 2, Count: 2},
		{Index: 2, Start: 4, Count: 1},
	}, parts)
}

// Clamped ranges cover [0, rows) exactly once, contiguous and ascending
func TestSplit_Coverage(t *testing.T) {
	for _, policy := range []Policy{PolicyRemainderFirst, PolicyEven} {
		for rows := 0; rows <= 40; rows++ {
			for workers := 1; workers <= 12; workers++ {
				parts, err := SplitWith(policy, rows, workers)
				require.NoError(t, err)
				require.Len(t, parts, workers)

				next := 0
				for i, p := range parts {
					assert.Equal(t, i, p.Index)
					lo, hi := p.Clamp(rows)
					if lo == hi {
						continue
					}
					if lo != next {
						t.Fatalf("%s rows=%d workers=%d: partition %v starts at %d, want %d",
							policy, rows, workers, p, lo, next)
					}
					next = hi
				}
				if next != rows {
					t.Fatalf("%s rows=%d workers=%d: covered [0,%d)", policy, rows, workers, next)
				}
			}
		}
	}
}

func TestSeq_StopsEarly(t *testing.T) {
	seq, err := Seq(PolicyRemainderFirst, 100, 10)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("even")
	require.NoError(t, err)
	assert.Equal(t, PolicyEven, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRemainderFirst, p)
	assert.Equal(t, "remainder-first", p.String())

	_, err = ParsePolicy("random")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
