package cli

import (
	"bytes"
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
	assert.Equal(t, "mechanics", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"validate", "triggers", "test", "trace", "cooldowns", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "yaml", "triggers")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestRoot_InvalidEnvironment(t *testing.T) {
	t.Setenv("MECHANICS_TICK", "-5ms")

	_, _, err := execute(t, "triggers")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "MECHANICS_TICK")
}

func TestRoot_ItemsPathFromEnvironment(t *testing.T) {
	t.Setenv("MECHANICS_ITEMS", "testdata/items/good")

	out, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 item(s) valid in 2 file(s)")
}

func TestDBPath(t *testing.T) {
	opts := &RootOptions{}
	opts.Config.DBPath = "env.db"
	assert.Equal(t, "flag.db", dbPath(opts, "flag.db"))
	assert.Equal(t, "env.db", dbPath(opts, ""))
}
