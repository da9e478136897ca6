package platform

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout selects how libraries are arranged under a resource directory.
type Layout string

const (
	// LayoutFlat places every library directly in the resource directory:
	// <dir>/libtbdex.so
	LayoutFlat Layout = "flat"
	// LayoutPlatform uses one sub-directory per platform:
	// <dir>/linux-x86-64/libtbdex.so
	LayoutPlatform Layout = "platform"
	// LayoutMultiArch keeps all platforms side by side, distinguished by the
	// target triple: <dir>/libtbdex_uniffi_x86_64_unknown_linux_gnu.so
	LayoutMultiArch Layout = "multiarch"
)

// Layouts returns every supported layout, default first.
func Layouts() []Layout {
	return []Layout{LayoutFlat, LayoutPlatform, LayoutMultiArch}
}

// ParseLayout accepts a layout name case-insensitively. Empty means flat.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LayoutFlat, nil
	case LayoutFlat, LayoutPlatform, LayoutMultiArch:
		return l, nil
	default:
		return "", fmt.Errorf("unknown library layout %q (want flat, platform or multiarch)", s)
	}
}

// LibraryPath returns the conventional path of a library inside dir.
// base is the library base name ("tbdex"); namespace is the FFI namespace
// used by the multiarch layout ("tbdex_uniffi"). ok is false when the
// platform has no convention.
func (p Platform) LibraryPath(dir, base, namespace string, layout Layout) (string, bool) {
	if !p.Supported() {
		return "", false
	}
	switch layout {
	case LayoutPlatform:
		sub, _ := p.ResourcePrefix()
		return filepath.Join(dir, sub, p.FileName(base)), true
	case LayoutMultiArch:
		triple, _ := p.Triple()
		if namespace == "" {
			namespace = base
		}
		return filepath.Join(dir, p.FileName(namespace+"_"+triple)), true
	default:
		return filepath.Join(dir, p.FileName(base)), true
	}
}
