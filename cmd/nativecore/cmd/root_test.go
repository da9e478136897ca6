package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every configuration source at an empty temp project and
// returns its directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("HOME", dir)
	t.Setenv("NATIVECORE_RESOURCE_DIR", filepath.Join(dir, "lib"))
	t.Setenv("NATIVECORE_LIBRARY_LAYOUT", "")
	t.Setenv("NATIVECORE_NATIVE_LOG_LEVEL", "")
	t.Setenv("NATIVECORE_LOG_FILE", "")
	t.Setenv("NATIVECORE_LOG_LEVEL", "error")
	t.Setenv("TBDEX_LIBRARY_OVERRIDE", "")
	t.Setenv("TBDEX_SDK_LOG_LEVEL", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	t.Chdir(dir)
	return dir
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, sc := range root.Commands() {
		names[sc.Name()] = true
	}
	for _, name := range []string{"probe", "resolve", "doctor", "config", "version"} {
		assert.True(t, names[name], "missing %s command", name)
	}
}

func TestRootCmd_SilencesCobraErrors(t *testing.T) {
	root := NewRootCmd()
	assert.True(t, root.SilenceErrors)
	assert.True(t, root.SilenceUsage)
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRootCmd_DebugWritesLogFile(t *testing.T) {
	dir := isolate(t)
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, _, err := run(t, "--debug", "version", "--short")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".nativecore", "logs", "nativecore.log"))
	assert.Nil(t, loggingCleanup, "post-run hook closes the log")
}

func TestReportedError(t *testing.T) {
	var err error = &reportedError{message: "boom"}
	assert.EqualError(t, err, "boom")
}

func findCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c, _, err := NewRootCmd().Find(args)
	require.NoError(t, err)
	return c
}
