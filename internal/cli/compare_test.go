package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/gridsum/pkg/reduce"
)

func TestCompare_AllStrategiesMatch(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "compare", "--rows", "100", "--cols", "3", "-w", "4")
	require.NoError(t, err)

	res := decodeData[CompareResult](t, out)
	assert.Equal(t, 100, res.Rows)
	assert.Equal(t, 4, res.Workers)
	assert.Equal(t, 45150.0, res.Sequential)
	require.Len(t, res.Entries, len(reduce.Strategies()))

	for i, s := range reduce.Strategies() {
		e := res.Entries[i]
		assert.Equal(t, s.String(), e.Strategy)
		assert.True(t, e.Matches, "strategy %s", s)
		assert.Equal(t, 45150.0, e.Total)
		assert.Zero(t, e.Degraded)
		assert.Empty(t, e.Error)
	}
}

func TestCompare_Text(t *testing.T) {
	out, _, err := execute(t, "compare", "--grid", "testdata/grid.yaml", "-w", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "grid: 5 rows, fingerprint ")
	assert.Contains(t, out, "sequential         36\n")
	for _, s := range reduce.Strategies() {
		assert.Contains(t, out, fmt.Sprintf("%-18s 36  ok  (", s))
	}
}

func TestCompare_InvalidWorkers(t *testing.T) {
	_, _, err := execute(t, "compare", "--rows", "3", "-w", "-2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompare_RecordsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := execute(t, "compare", "--grid", "testdata/grid.csv", "-w", "2", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "history", "--db", db)
	require.NoError(t, err)
	hist := decodeData[HistoryResult](t, out)
	require.Len(t, hist.Runs, len(reduce.Strategies()))

	seen := map[string]bool{}
	for _, r := range hist.Runs {
		seen[r.Strategy] = true
		assert.Equal(t, 36.0, r.Total)
		assert.Equal(t, hist.Runs[0].Fingerprint, r.Fingerprint)
	}
	assert.Len(t, seen, len(reduce.Strategies()))
}

func TestFailuresByStrategy(t *testing.T) {
	cause := errors.New("unit failed")
	err := errors.Join(
		&reduce.Error{Strategy: reduce.ExplicitThread, Op: "join", Partition: 1, Err: cause},
		&reduce.Error{Strategy: reduce.FullyParallel, Op: "fold", Partition: reduce.NoPartition, Err: cause},
	)

	got := failuresByStrategy(err)
	assert.Len(t, got, 2)
	assert.Contains(t, got[reduce.ExplicitThread], "partition 1")
	assert.Contains(t, got[reduce.FullyParallel], "fold")
	assert.Empty(t, got[reduce.BoundedPipeline])

	assert.Empty(t, failuresByStrategy(nil))

	single := failuresByStrategy(&reduce.Error{Strategy: reduce.BoundedPipeline, Op: "fold", Partition: reduce.NoPartition, Err: cause})
	assert.Len(t, single, 1)
	assert.Contains(t, single[reduce.BoundedPipeline], "unit failed")
}

func TestCloseTo(t *testing.T) {
	assert.True(t, closeTo(0.1+0.2, 0.3))
	assert.True(t, closeTo(1e12+1e-4, 1e12))
	assert.False(t, closeTo(36, 33))
	assert.False(t, closeTo(0, 1e-6))
}
