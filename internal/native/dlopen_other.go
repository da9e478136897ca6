//go:build !(darwin || freebsd || linux || netbsd || windows)

package native

import (
	"fmt"
	"runtime"
)

func open(path string) (Library, error) {
	return nil, fmt.Errorf("dynamic loading is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}

func registerFunc(fnPtr any, addr uintptr) {
	panic("dynamic loading is not supported on " + runtime.GOOS)
}
