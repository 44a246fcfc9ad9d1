package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "count", "--duration", "60ms", "--interval", "5ms", "--start", "7")
	require.NoError(t, err)

	res := decodeData[CountResult](t, out)
	require.GreaterOrEqual(t, len(res.Ticks), 2)
	assert.Equal(t, int64(7), res.Ticks[0])
	for i := 1; i < len(res.Ticks); i++ {
		assert.Equal(t, res.Ticks[i-1]+1, res.Ticks[i])
	}
	assert.Equal(t, res.Ticks[len(res.Ticks)-1], res.Final)
}

func TestCount_Down(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "count", "-d", "60ms", "--interval", "5ms", "--down")
	require.NoError(t, err)

	res := decodeData[CountResult](t, out)
	require.GreaterOrEqual(t, len(res.Ticks), 2)
	assert.Equal(t, []int64{0, -1}, res.Ticks[:2])
}

func TestCount_Text(t *testing.T) {
	out, _, err := execute(t, "count", "-d", "40ms", "--interval", "5ms", "--start", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "3", lines[0])
}

func TestCount_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero_interval", []string{"count", "-d", "10ms", "--interval", "0s"}},
		{"negative_duration", []string{"count", "-d", "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
