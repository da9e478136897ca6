package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nativecore/internal/locator"
)

func TestResolve_EnvOverride(t *testing.T) {
	// Given: TBDEX_LIBRARY_OVERRIDE is set
	isolate(t)
	t.Setenv("TBDEX_LIBRARY_OVERRIDE", "/opt/custom/libtbdex.so")

	// When: resolving tbdex
	stdout, _, err := run(t, "resolve", "tbdex")

	// Then: the override path and its origin are shown
	require.NoError(t, err)
	assert.Contains(t, stdout, "/opt/custom/libtbdex.so")
	assert.Contains(t, stdout, "override (env)")
}

func TestResolve_FlagBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TBDEX_LIBRARY_OVERRIDE", "/opt/env/libtbdex.so")

	stdout, _, err := run(t, "resolve", "--json", "--override", "tbdex=/opt/flag/libtbdex.so")

	require.NoError(t, err)
	var got []locator.Resolution
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/opt/flag/libtbdex.so", got[0].Path)
	assert.Equal(t, locator.SourceOverride, got[0].Source)
}

func TestResolve_Conventional(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := run(t, "resolve", "--json")

	require.NoError(t, err)
	var got []locator.Resolution
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, locator.SourceConventional, got[0].Source)
	assert.Equal(t, filepath.Join(dir, "lib"), filepath.Dir(got[0].Path))
	assert.Equal(t, "flat", got[0].Layout)
}

func TestResolve_InvalidOverrideFlag(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "resolve", "--override", "tbdex=")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --override")
}
