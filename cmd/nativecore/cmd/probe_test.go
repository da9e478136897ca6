package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nativecore/internal/native"
)

func TestProbeCmd_Flags(t *testing.T) {
	probe := findCmd(t, "probe")

	for _, name := range []string{"log-level", "override", "json", "metrics-file", "parallel"} {
		assert.NotNil(t, probe.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestProbe_MissingLibraryReportsLoadError(t *testing.T) {
	// Given: an override pointing at a file that does not exist
	dir := isolate(t)
	missing := filepath.Join(dir, "libtbdex.so")

	// When: probing tbdex
	stdout, _, err := run(t, "probe", "tbdex", "--override", "tbdex="+missing)

	// Then: the failure is printed with its code and the command fails
	require.Error(t, err)
	assert.IsType(t, &reportedError{}, err)
	assert.Contains(t, stdout, "tbdex failed to load")
	assert.Contains(t, stdout, "ERR_601_LIBRARY_NOT_FOUND")
	assert.Contains(t, stdout, "probe again to retry the load")
}

func TestProbe_UnknownIdentity(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "probe", "web5")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown component")
}

func TestProbe_InvalidLogLevel(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "probe", "--log-level", "loud")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestProbe_JSONFailure(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := run(t, "probe", "--json", "--override", "tbdex="+filepath.Join(dir, "nope.so"))

	require.Error(t, err)
	var parsed struct {
		Results []struct {
			Identity string          `json:"identity"`
			Loaded   bool            `json:"loaded"`
			Error    json.RawMessage `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &parsed))
	require.Len(t, parsed.Results, 1)
	assert.Equal(t, "tbdex", parsed.Results[0].Identity)
	assert.False(t, parsed.Results[0].Loaded)
	assert.Contains(t, string(parsed.Results[0].Error), "ERR_601_LIBRARY_NOT_FOUND")
}

func TestProbe_LoadsDeclaredComponent(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("uses glibc's libc.so.6")
	}
	if lib, err := native.System().Open("libc.so.6"); err != nil {
		t.Skipf("libc.so.6 not available: %v", err)
	} else {
		_ = lib.Close()
	}

	// Given: a project declaring libc as a component
	dir := isolate(t)
	t.Setenv("LIBC_SDK_LOG_LEVEL", "")
	project := `version: 1
library:
  overrides:
    libc: libc.so.6
components:
  - id: libc
    lib_name: c
    symbols: [getpid]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nativecore.yaml"), []byte(project), 0o644))
	metrics := filepath.Join(dir, "probe.prom")

	// When: probing it
	stdout, _, err := run(t, "probe", "libc", "--log-level", "debug", "--metrics-file", metrics)

	// Then: it loads and metrics are written
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully loaded shared library for libc.so.6")
	assert.Contains(t, stdout, "1 bound")
	assert.Equal(t, "DEBUG", os.Getenv("LIBC_SDK_LOG_LEVEL"))

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `nativecore_loader_load_attempts_total{component="libc"} 1`)
	assert.Contains(t, string(data), `nativecore_loader_component_state{component="libc",state="loaded"} 1`)
}
