package loader

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/native"
)

// Handle is a loaded component. It stays valid for the life of the process;
// there is no unload.
type Handle struct {
	id              string
	def             component.Definition
	lib             native.Library
	symbols         map[string]uintptr
	contractVersion int
	loadedAt        time.Time
}

func newHandle(def component.Definition, lib native.Library) *Handle {
	return &Handle{
		id:       uuid.NewString(),
		def:      def,
		lib:      lib,
		symbols:  make(map[string]uintptr, len(def.Symbols)+1),
		loadedAt: time.Now(),
	}
}

// ID is a unique identifier for this load, used to correlate log lines.
func (h *Handle) ID() string { return h.id }

// Identity is the component identity.
func (h *Handle) Identity() string { return h.def.Identity }

// Path is the file the library was loaded from.
func (h *Handle) Path() string { return h.lib.Path() }

// ContractVersion is the version reported by the library, or 0 if the
// component declares no contract.
func (h *Handle) ContractVersion() int { return h.contractVersion }

// LoadedAt is when the load completed.
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// Symbol returns the address of a required symbol bound at load time.
func (h *Handle) Symbol(name string) (uintptr, bool) {
	addr, ok := h.symbols[name]
	return addr, ok
}

// Symbols lists the bound symbol names, sorted.
func (h *Handle) Symbols() []string {
	names := make([]string, 0, len(h.symbols))
	for n := range h.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bind makes *fnPtr call the exported function name. Names outside the
// required set are looked up on demand.
func (h *Handle) Bind(fnPtr any, name string) error {
	if err := h.lib.Bind(fnPtr, name); err != nil {
		return fmt.Errorf("component %s: %w", h.def.Identity, err)
	}
	return nil
}
