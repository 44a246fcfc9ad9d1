package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gridsum", cmd.Use)
	assert.Contains(t, cmd.Long, "bounded-pipeline")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sum", "compare", "partitions", "count", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("metrics"))
}

func TestSumCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sumCmd, _, err := cmd.Find([]string{"sum"})
	require.NoError(t, err)

	for _, name := range []string{"grid", "rows", "cols", "workers", "strategy", "policy", "depth", "db"} {
		assert.NotNil(t, sumCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "w", sumCmd.Flags().Lookup("workers").Shorthand)
	assert.Equal(t, "1", sumCmd.Flags().Lookup("cols").DefValue)
}

func TestCompareCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compareCmd, _, err := cmd.Find([]string{"compare"})
	require.NoError(t, err)

	assert.Nil(t, compareCmd.Flags().Lookup("strategy"), "compare runs every strategy")
	assert.NotNil(t, compareCmd.Flags().Lookup("db"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "partitions", "--rows", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUnknownFlagIsCommandError(t *testing.T) {
	_, _, err := execute(t, "partitions", "--rows", "1", "--bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigFile(t *testing.T) {
	out, _, err := execute(t, "--config", "testdata/config.yaml", "--format", "json", "sum", "--grid", "testdata/grid.yaml")
	require.NoError(t, err)

	res := decodeData[SumResult](t, out)
	assert.Equal(t, "fully-parallel", res.Strategy)
	assert.Equal(t, 3, res.Workers)
	assert.Equal(t, 36.0, res.Total)
}

func TestConfigFile_FlagsOverride(t *testing.T) {
	out, _, err := execute(t, "-c", "testdata/config.yaml", "--format", "json",
		"sum", "--grid", "testdata/grid.yaml", "-w", "2", "-s", "explicit-thread")
	require.NoError(t, err)

	res := decodeData[SumResult](t, out)
	assert.Equal(t, "explicit-thread", res.Strategy)
	assert.Equal(t, 2, res.Workers)
}

func TestConfigFile_Missing(t *testing.T) {
	_, _, err := execute(t, "--config", "testdata/nope.yaml", "sum", "--rows", "3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad", errors.New("inner")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
