package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
)

func TestTbdex_Definition(t *testing.T) {
	d := Tbdex()

	assert.Equal(t, "tbdex", d.Identity)
	assert.Equal(t, "tbdex", d.BaseName())
	assert.Equal(t, "TBDEX_SDK_LOG_LEVEL", d.LogLevelEnv)
	assert.Equal(t, "ffi_tbdex_uniffi_uniffi_contract_version", d.ContractSymbol())
	assert.Contains(t, d.Symbols, "uniffi_tbdex_uniffi_fn_func_get_offerings")
	assert.Contains(t, d.Symbols, "uniffi_tbdex_uniffi_fn_func_submit_cancel")
	assert.Contains(t, d.Symbols, "uniffi_tbdex_uniffi_fn_func_get_exchange_ids")
	assert.NotContains(t, d.Symbols, "uniffi_tbdex_uniffi_fn_func_get_exchanges",
		"the exchange listing is exported as get_exchange_ids")
	assert.NoError(t, d.Validate())

	req := d.RequiredSymbols()
	assert.Equal(t, d.ContractSymbol(), req[0], "contract symbol is checked first")
	assert.Len(t, req, len(d.Symbols)+1)
}

func TestDefinition_RequiredSymbolsDeduplicates(t *testing.T) {
	d := Definition{
		Identity:        "demo",
		Namespace:       "demo",
		ContractVersion: 1,
		Symbols:         []string{"ffi_demo_uniffi_contract_version", "a", "a", "b"},
	}
	assert.Equal(t, []string{"ffi_demo_uniffi_contract_version", "a", "b"}, d.RequiredSymbols())

	d.ContractVersion = 0
	assert.Equal(t, []string{"ffi_demo_uniffi_contract_version", "a", "b"}, d.RequiredSymbols())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty identity", Definition{}},
		{"path in lib name", Definition{Identity: "x", LibName: "../x"}},
		{"contract without namespace", Definition{Identity: "x", ContractVersion: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			require.Error(t, err)
			assert.True(t, nerrors.IsConfigurationError(err))
		})
	}
}

func TestCatalog_LookupUnknown(t *testing.T) {
	c := Builtin()

	_, err := c.Lookup("web5")
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeUnknownComponent, nerrors.GetCode(err))
	ne, ok := nerrors.As(err)
	require.True(t, ok)
	assert.Contains(t, ne.Suggestion, "tbdex")

	_, err = c.Lookup("")
	assert.True(t, nerrors.IsConfigurationError(err))
}

func TestLoad_AddsDeclaredComponents(t *testing.T) {
	// Given: a config declaring a component and redefining tbdex
	cfg := config.NewConfig()
	cfg.Components = []config.ComponentConfig{
		{ID: "web5-core", Namespace: "web5_uniffi", ContractVersion: 26, Symbols: []string{"w"}},
		{ID: "tbdex", LibName: "tbdex_dev"},
	}

	// When: loading the catalog
	c, err := Load(cfg)
	require.NoError(t, err)

	// Then: both are visible and the declaration replaces the built-in
	assert.Equal(t, []string{"tbdex", "web5-core"}, c.Identities())

	web5, err := c.Lookup("web5-core")
	require.NoError(t, err)
	assert.Equal(t, "web5-core", web5.BaseName())
	assert.Equal(t, "WEB5_CORE_SDK_LOG_LEVEL", web5.LogLevelEnv)

	tb, err := c.Lookup("tbdex")
	require.NoError(t, err)
	assert.Equal(t, "tbdex_dev", tb.BaseName())
}

func TestLoad_RejectsInvalidDeclaration(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Components = []config.ComponentConfig{{ID: "bad", LibName: "a/b"}}

	_, err := Load(cfg)
	assert.Error(t, err)
}

func TestCatalog_MatchEnvKey(t *testing.T) {
	c, err := NewCatalog(Tbdex(), Definition{Identity: "web5-core"})
	require.NoError(t, err)

	id, ok := c.MatchEnvKey("WEB5_CORE")
	require.True(t, ok)
	assert.Equal(t, "web5-core", id)

	_, ok = c.MatchEnvKey("NOPE")
	assert.False(t, ok)
}
