// Package component describes the native components nativecore knows how to
// locate and load.
package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
)

// Definition describes one native component.
type Definition struct {
	// Identity is the stable name callers use ("tbdex").
	Identity string
	// LibName is the library base name without prefix or suffix.
	// Defaults to Identity.
	LibName string
	// Namespace is the FFI symbol namespace ("tbdex_uniffi").
	Namespace string
	// ContractVersion is the ABI contract the bindings expect. Zero skips
	// the contract check.
	ContractVersion int
	// Symbols lists exported functions that must be present.
	Symbols []string
	// LogLevelEnv is the environment variable the native logger reads.
	LogLevelEnv string
}

// BaseName returns LibName, or Identity when LibName is empty.
func (d Definition) BaseName() string {
	if d.LibName != "" {
		return d.LibName
	}
	return d.Identity
}

// ContractSymbol is the exported function returning the ABI contract
// version, or "" when the definition has no namespace.
func (d Definition) ContractSymbol() string {
	if d.Namespace == "" {
		return ""
	}
	return "ffi_" + d.Namespace + "_uniffi_contract_version"
}

// RequiredSymbols returns Symbols plus the contract symbol when a contract
// version is declared, without duplicates.
func (d Definition) RequiredSymbols() []string {
	out := make([]string, 0, len(d.Symbols)+1)
	seen := make(map[string]bool, len(d.Symbols)+1)
	if d.ContractVersion > 0 {
		if sym := d.ContractSymbol(); sym != "" {
			out = append(out, sym)
			seen[sym] = true
		}
	}
	for _, s := range d.Symbols {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Identity) == "" {
		return nerrors.ConfigurationError(nerrors.ErrCodeUnknownComponent,
			"component identity must not be empty", nil)
	}
	if strings.ContainsAny(d.BaseName(), `/\`) {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("component %q: lib_name must be a base name, got %q", d.Identity, d.BaseName()), nil)
	}
	if d.ContractVersion > 0 && d.Namespace == "" {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("component %q: contract_version requires a namespace", d.Identity), nil)
	}
	return nil
}

// FromConfig converts a declared component into a Definition. A missing
// log_level_env defaults to <ID>_SDK_LOG_LEVEL.
func FromConfig(c config.ComponentConfig) Definition {
	def := Definition{
		Identity:        c.ID,
		LibName:         c.LibName,
		Namespace:       c.Namespace,
		ContractVersion: c.ContractVersion,
		Symbols:         append([]string(nil), c.Symbols...),
		LogLevelEnv:     c.LogLevelEnv,
	}
	if def.LogLevelEnv == "" {
		def.LogLevelEnv = config.LogLevelEnvVar(c.ID)
	}
	return def
}

// Catalog is a concurrency-safe set of definitions keyed by identity.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewCatalog returns a catalog holding defs.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Builtin returns a catalog of the components compiled into nativecore.
func Builtin() *Catalog {
	c, err := NewCatalog(Tbdex())
	if err != nil {
		panic(err)
	}
	return c
}

// Load returns the built-in catalog extended with the components declared in
// cfg. A declared component with a built-in identity replaces the built-in.
func Load(cfg *config.Config) (*Catalog, error) {
	c := Builtin()
	for _, cc := range cfg.Components {
		if err := c.Register(FromConfig(cc)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds or replaces a definition.
func (c *Catalog) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[d.Identity] = d
	return nil
}

// Lookup returns the definition for identity.
func (c *Catalog) Lookup(identity string) (Definition, error) {
	if identity == "" {
		return Definition{}, nerrors.ConfigurationError(nerrors.ErrCodeUnknownComponent,
			"component identity must not be empty", nil)
	}
	c.mu.RLock()
	d, ok := c.defs[identity]
	c.mu.RUnlock()
	if !ok {
		return Definition{}, nerrors.ConfigurationError(nerrors.ErrCodeUnknownComponent,
			fmt.Sprintf("unknown component %q", identity), nil).
			WithDetail("component", identity).
			WithSuggestion("Known components: " + strings.Join(c.Identities(), ", "))
	}
	return d, nil
}

// Identities returns the known identities, sorted.
func (c *Catalog) Identities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MatchEnvKey returns the identity whose config.EnvKey equals key.
func (c *Catalog) MatchEnvKey(key string) (string, bool) {
	for _, id := range c.Identities() {
		if config.EnvKey(id) == key {
			return id, true
		}
	}
	return "", false
}
