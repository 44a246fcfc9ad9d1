package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitions_Golden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"partitions_remainder_first", []string{"--rows", "5", "--workers", "3"}},
		{"partitions_even", []string{"--rows", "10", "--workers", "4", "--policy", "even"}},
		{"partitions_more_workers", []string{"--rows", "2", "-w", "4"}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"partitions"}, tt.args...)...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}

func TestPartitions_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "partitions", "--rows", "5", "--workers", "3")
	require.NoError(t, err)

	res := decodeData[PartitionsResult](t, out)
	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 3, res.Workers)
	assert.Equal(t, "remainder-first", res.Policy)
	assert.Equal(t, 2, res.Active)
	require.Len(t, res.Partitions, 3)

	assert.Equal(t, PartitionView{Index: 1, Start: 3, Count: 3, First: 3, Last: 4, Rows: 2, Active: true}, res.Partitions[1])
	assert.False(t, res.Partitions[2].Active)
	assert.Equal(t, 6, res.Partitions[2].Start)
	assert.Equal(t, 0, res.Partitions[2].Rows)
}

func TestPartitions_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero_workers", []string{"--rows", "5", "--workers", "0"}},
		{"negative_rows", []string{"--rows", "-1", "--workers", "2"}},
		{"unknown_policy", []string{"--rows", "5", "--workers", "2", "--policy", "random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"partitions"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestPartitions_RowsRequired(t *testing.T) {
	_, _, err := execute(t, "partitions", "--workers", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
