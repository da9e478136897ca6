//go:build windows

package native

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

// dll is a library opened with LoadLibrary.
type dll struct {
	path string
	d    *windows.DLL
}

func open(path string) (Library, error) {
	d, err := windows.LoadDLL(path)
	if err != nil {
		return nil, err
	}
	return &dll{path: path, d: d}, nil
}

func (l *dll) Path() string { return l.path }

func (l *dll) Lookup(name string) (uintptr, error) {
	proc, err := l.d.FindProc(name)
	if err != nil {
		return 0, &SymbolError{Name: name, Diagnostic: err.Error()}
	}
	return proc.Addr(), nil
}

func (l *dll) Bind(fnPtr any, name string) error {
	addr, err := l.Lookup(name)
	if err != nil {
		return err
	}
	return bindAddr(fnPtr, addr, name)
}

func (l *dll) Close() error {
	if l.d == nil {
		return nil
	}
	err := l.d.Release()
	l.d = nil
	return err
}

func registerFunc(fnPtr any, addr uintptr) {
	purego.RegisterFunc(fnPtr, addr)
}
