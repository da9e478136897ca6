package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nativecore/configs"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	configCmd := findCmd(t, "config")

	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["show"])
	assert.True(t, names["path"])

	show := findCmd(t, "config", "show")
	assert.Equal(t, "merged", show.Flags().Lookup("source").DefValue)
}

func TestConfigPath_OutputsXDGPath(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := run(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".config", "nativecore", "config.yaml"), strings.TrimSpace(stdout))
}

func TestConfigInit_WritesUserTemplate(t *testing.T) {
	// Given: no user config
	dir := isolate(t)
	path := filepath.Join(dir, ".config", "nativecore", "config.yaml")

	// When: running config init
	stdout, _, err := run(t, "config", "init")

	// Then: the template is written
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))

	// And: a second run leaves it alone without --force
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	stdout, _, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, _ = os.ReadFile(path)
	assert.Equal(t, "version: 1\n", string(data))

	_, _, err = run(t, "config", "init", "--force")
	require.NoError(t, err)
	data, _ = os.ReadFile(path)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_Project(t *testing.T) {
	dir := isolate(t)

	_, _, err := run(t, "config", "init", "--project")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".nativecore.yaml"))
}

func TestConfigShow_MergedIncludesEffectiveValues(t *testing.T) {
	// Given: a project override and an env log level
	dir := isolate(t)
	project := "library:\n  overrides:\n    tbdex: /opt/project/libtbdex.so\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nativecore.yaml"), []byte(project), 0o644))
	t.Setenv("TBDEX_SDK_LOG_LEVEL", "warn")

	// When: showing merged config
	stdout, _, err := run(t, "config", "show")

	// Then: the effective override and level are listed
	require.NoError(t, err)
	assert.Contains(t, stdout, "Effective per component")
	assert.Contains(t, stdout, "/opt/project/libtbdex.so (config)")
	assert.Contains(t, stdout, "warn")
}

func TestConfigShow_JSONDefaults(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "config", "show", "--source", "defaults", "--json")

	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &parsed))
	assert.Contains(t, parsed, "library")
	assert.Contains(t, parsed, "logging")
}

func TestConfigShow_MissingSources(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "config", "show", "--source", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No user configuration file found")

	stdout, _, err = run(t, "config", "show", "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No project configuration file found")

	_, _, err = run(t, "config", "show", "--source", "bogus")
	assert.Error(t, err)
}
