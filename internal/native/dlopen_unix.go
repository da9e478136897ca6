//go:build darwin || freebsd || linux || netbsd

package native

import (
	"github.com/ebitengine/purego"
)

// sharedLibrary is a library opened with dlopen.
type sharedLibrary struct {
	path   string
	handle uintptr
}

// open loads path with RTLD_NOW so unresolved dependencies fail here rather
// than on first call.
func open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	return &sharedLibrary{path: path, handle: h}, nil
}

func (so *sharedLibrary) Path() string { return so.path }

func (so *sharedLibrary) Lookup(name string) (uintptr, error) {
	addr, err := purego.Dlsym(so.handle, name)
	if err != nil {
		return 0, &SymbolError{Name: name, Diagnostic: err.Error()}
	}
	if addr == 0 {
		return 0, &SymbolError{Name: name}
	}
	return addr, nil
}

func (so *sharedLibrary) Bind(fnPtr any, name string) error {
	addr, err := so.Lookup(name)
	if err != nil {
		return err
	}
	return bindAddr(fnPtr, addr, name)
}

func (so *sharedLibrary) Close() error {
	if so.handle == 0 {
		return nil
	}
	err := purego.Dlclose(so.handle)
	so.handle = 0
	return err
}

func registerFunc(fnPtr any, addr uintptr) {
	purego.RegisterFunc(fnPtr, addr)
}
