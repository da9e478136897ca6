// Package native opens shared libraries and binds their exported functions to
// Go function values without cgo.
//
// On Unix the platform dynamic loader is reached through purego's dlopen and
// dlsym; on Windows through LoadLibrary and GetProcAddress. Both bind symbols
// with purego.RegisterFunc. Errors carry the loader's own diagnostic text
// unchanged.
package native

import (
	"fmt"
)

// Library is an opened shared library.
type Library interface {
	// Path is the path the library was opened from.
	Path() string
	// Lookup returns the address of an exported symbol.
	Lookup(name string) (uintptr, error)
	// Bind looks up name and makes *fnPtr call it. fnPtr must be a
	// pointer to a func variable.
	Bind(fnPtr any, name string) error
	// Close releases the library.
	Close() error
}

// Opener opens libraries by path.
type Opener interface {
	Open(path string) (Library, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Library, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Library, error) {
	return f(path)
}

// System returns the platform dynamic loader.
func System() Opener {
	return OpenerFunc(open)
}

// SymbolError reports a symbol that could not be found.
type SymbolError struct {
	Name       string
	Diagnostic string
}

func (e *SymbolError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("symbol %s not found", e.Name)
	}
	return e.Diagnostic
}

// bindAddr registers fnPtr against addr, turning purego's panics on a bad
// function type into errors.
func bindAddr(fnPtr any, addr uintptr, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bind %s: %v", name, r)
		}
	}()
	registerFunc(fnPtr, addr)
	return nil
}
