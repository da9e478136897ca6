// Package nativetest provides in-memory stand-ins for shared libraries so
// loader behavior can be tested without building native code.
package nativetest

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Aman-CERP/nativecore/internal/native"
)

// Library is a fake native.Library whose symbols are Go functions.
type Library struct {
	path    string
	symbols map[string]any
	closed  atomic.Bool
}

var _ native.Library = (*Library)(nil)

// NewLibrary returns a library exporting symbols.
func NewLibrary(path string, symbols map[string]any) *Library {
	return &Library{path: path, symbols: symbols}
}

func (l *Library) Path() string { return l.path }

// Lookup returns a stable non-zero pseudo address for exported names.
func (l *Library) Lookup(name string) (uintptr, error) {
	if _, ok := l.symbols[name]; !ok {
		return 0, &native.SymbolError{Name: name, Diagnostic: fmt.Sprintf("%s: undefined symbol: %s", l.path, name)}
	}
	names := make([]string, 0, len(l.symbols))
	for n := range l.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return uintptr(sort.SearchStrings(names, name) + 1), nil
}

// Bind assigns the Go function registered under name to *fnPtr. The types
// must match exactly.
func (l *Library) Bind(fnPtr any, name string) error {
	if _, err := l.Lookup(name); err != nil {
		return err
	}
	dst := reflect.ValueOf(fnPtr)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Func {
		return fmt.Errorf("bind %s: want pointer to func, got %T", name, fnPtr)
	}
	src := reflect.ValueOf(l.symbols[name])
	if src.Type() != dst.Elem().Type() {
		return fmt.Errorf("bind %s: symbol has type %s, target %s", name, src.Type(), dst.Elem().Type())
	}
	dst.Elem().Set(src)
	return nil
}

func (l *Library) Close() error {
	l.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (l *Library) Closed() bool {
	return l.closed.Load()
}

// Opener is a fake native.Opener that serves Libraries by path and counts
// Open calls.
type Opener struct {
	mu     sync.Mutex
	libs   map[string]*Library
	errs   map[string]error
	opened []*Library

	// Gate, when non-nil, makes Open wait until it is closed. Entered is
	// signalled on each Open before waiting.
	Gate    chan struct{}
	Entered chan struct{}

	calls atomic.Int32
}

var _ native.Opener = (*Opener)(nil)

// ErrNotFound mimics a loader failing to find the file.
var ErrNotFound = errors.New("cannot open shared object file: No such file or directory")

// NewOpener returns an Opener with no libraries.
func NewOpener() *Opener {
	return &Opener{libs: map[string]*Library{}, errs: map[string]error{}}
}

// Add serves symbols at path.
func (o *Opener) Add(path string, symbols map[string]any) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[path] = NewLibrary(path, symbols)
	return o
}

// Fail makes Open(path) return err.
func (o *Opener) Fail(path string, err error) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs[path] = err
	return o
}

// Open implements native.Opener. Each call returns a fresh Library so
// Close on one attempt does not affect another.
func (o *Opener) Open(path string) (native.Library, error) {
	o.calls.Add(1)
	if o.Entered != nil {
		o.Entered <- struct{}{}
	}
	if o.Gate != nil {
		<-o.Gate
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.errs[path]; ok {
		return nil, err
	}
	lib, ok := o.libs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	fresh := NewLibrary(path, lib.symbols)
	o.opened = append(o.opened, fresh)
	return fresh, nil
}

// Calls returns how many times Open was called.
func (o *Opener) Calls() int {
	return int(o.calls.Load())
}

// Opened returns the libraries handed out so far.
func (o *Opener) Opened() []*Library {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Library(nil), o.opened...)
}

// ContractVersion returns a symbol implementation for a uniffi contract
// version function.
func ContractVersion(v uint32) func() uint32 {
	return func() uint32 { return v }
}

// Noop is a placeholder symbol for functions tests never call.
func Noop() {}
