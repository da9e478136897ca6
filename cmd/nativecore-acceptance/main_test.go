package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nativecore/internal/component"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/loader"
	"github.com/Aman-CERP/nativecore/internal/logging"
	"github.com/Aman-CERP/nativecore/internal/native/nativetest"
)

// isolate runs the test from an empty project whose tbdex override is
// libPath.
func isolate(t *testing.T) (libPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("HOME", dir)
	t.Setenv("NATIVECORE_RESOURCE_DIR", filepath.Join(dir, "lib"))
	t.Setenv("NATIVECORE_NATIVE_LOG_LEVEL", "")
	t.Setenv("TBDEX_SDK_LOG_LEVEL", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	t.Chdir(dir)

	libPath = filepath.Join(dir, "build", "libtbdex_uniffi.so")
	t.Setenv("TBDEX_LIBRARY_OVERRIDE", libPath)
	return libPath
}

func tbdexSymbols(contract uint32) map[string]any {
	def := component.Tbdex()
	syms := map[string]any{}
	for _, s := range def.Symbols {
		syms[s] = nativetest.Noop
	}
	syms[def.ContractSymbol()] = nativetest.ContractVersion(contract)
	return syms
}

func testOptions(opener *nativetest.Opener, env map[string]string) loader.Options {
	return loader.Options{
		Opener: opener,
		Logger: logging.Discard(),
		Setenv: func(k, v string) error {
			env[k] = v
			return nil
		},
	}
}

func TestRun_LoadsOverrideOnce(t *testing.T) {
	// Given: a loadable tbdex library at the override path
	libPath := isolate(t)
	opener := nativetest.NewOpener().Add(libPath, tbdexSymbols(26))
	env := map[string]string{}

	// When: running the acceptance sequence
	var out bytes.Buffer
	err := run(&out, component.TbdexIdentity, testOptions(opener, env))

	// Then: it reports the load, opens the library once and passes
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Resolved "+libPath+" (override)")
	assert.Contains(t, out.String(), "Successfully loaded shared library for "+libPath)
	assert.Contains(t, out.String(), "Contract version 26")
	assert.Contains(t, out.String(), "ACCEPTANCE PASSED")
	assert.Equal(t, 1, opener.Calls(), "second load must reuse the handle")
	assert.Equal(t, "DEBUG", env["TBDEX_SDK_LOG_LEVEL"])
}

func TestRun_MissingLibraryFails(t *testing.T) {
	// Given: nothing is served at the override path
	isolate(t)
	opener := nativetest.NewOpener()

	// When: running the acceptance sequence
	var out bytes.Buffer
	err := run(&out, component.TbdexIdentity, testOptions(opener, map[string]string{}))

	// Then: the load error surfaces and nothing claims success
	require.Error(t, err)
	assert.True(t, nerrors.IsLoadError(err))
	assert.NotContains(t, out.String(), "ACCEPTANCE PASSED")
}

func TestRun_ContractMismatchFails(t *testing.T) {
	libPath := isolate(t)
	opener := nativetest.NewOpener().Add(libPath, tbdexSymbols(25))

	var out bytes.Buffer
	err := run(&out, component.TbdexIdentity, testOptions(opener, map[string]string{}))

	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeContractMismatch, nerrors.GetCode(err))
}

func TestRun_UnknownIdentity(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	err := run(&out, "web5", testOptions(nativetest.NewOpener(), map[string]string{}))

	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeUnknownComponent, nerrors.GetCode(err))
}
