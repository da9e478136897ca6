// Package platform identifies the running operating system, CPU
// architecture and C library, and maps them onto shared-library naming
// conventions.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Libc is the C library flavour a Linux build links against.
type Libc string

const (
	LibcNone Libc = ""
	LibcGNU  Libc = "gnu"
	LibcMusl Libc = "musl"
)

// Platform describes a target for native libraries.
type Platform struct {
	OS   string // runtime.GOOS value
	Arch string // runtime.GOARCH value
	Libc Libc   // only set on linux
}

// osReleasePath is where Linux distributions describe themselves.
const osReleasePath = "/etc/os-release"

// Current returns the platform this process runs on.
func Current() Platform {
	var osRelease []byte
	if runtime.GOOS == "linux" {
		osRelease, _ = os.ReadFile(osReleasePath)
	}
	return Detect(runtime.GOOS, runtime.GOARCH, osRelease)
}

// Detect builds a Platform from GOOS/GOARCH values and, on linux, the
// contents of /etc/os-release. Alpine (and any os-release naming musl) is
// treated as musl; everything else, including a missing file, as glibc.
func Detect(goos, goarch string, osRelease []byte) Platform {
	p := Platform{OS: goos, Arch: goarch}
	if goos == "linux" {
		p.Libc = LibcGNU
		content := strings.ToLower(string(osRelease))
		if strings.Contains(content, "alpine") || strings.Contains(content, "musl") {
			p.Libc = LibcMusl
		}
	}
	return p
}

// Parse reads "os/arch" or "os/arch/libc" (e.g. "linux/amd64/musl").
func Parse(s string) (Platform, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Platform{}, fmt.Errorf("invalid platform %q: want os/arch[/libc]", s)
	}
	p := Platform{OS: parts[0], Arch: parts[1]}
	if len(parts) == 3 {
		p.Libc = Libc(parts[2])
	} else if p.OS == "linux" {
		p.Libc = LibcGNU
	}
	return p, nil
}

// String returns "os/arch" plus "/libc" on linux.
func (p Platform) String() string {
	if p.Libc != LibcNone {
		return fmt.Sprintf("%s/%s/%s", p.OS, p.Arch, p.Libc)
	}
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Supported reports whether the platform has a conventional library path.
func (p Platform) Supported() bool {
	_, ok := conventions[key{p.OS, p.Arch}]
	return ok
}

// Prefix is the library file name prefix ("lib" on Unix, "" on Windows).
func (p Platform) Prefix() string {
	if p.OS == "windows" {
		return ""
	}
	return "lib"
}

// Suffix is the library file extension including the dot.
func (p Platform) Suffix() string {
	switch p.OS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// FileName returns the conventional file name for a library base name,
// e.g. "libtbdex.so", "libtbdex.dylib" or "tbdex.dll".
func (p Platform) FileName(base string) string {
	return p.Prefix() + base + p.Suffix()
}

// ResourcePrefix is the per-platform resource directory name, in the
// "<os>-<arch>" style used for bundled native libraries
// (linux-x86-64, darwin-aarch64, win32-x86-64).
func (p Platform) ResourcePrefix() (string, bool) {
	c, ok := conventions[key{p.OS, p.Arch}]
	if !ok {
		return "", false
	}
	return c.resourcePrefix, true
}

// Triple returns the Rust target triple with '-' replaced by '_', as used in
// per-architecture artifact names (tbdex_uniffi_x86_64_unknown_linux_gnu).
func (p Platform) Triple() (string, bool) {
	c, ok := conventions[key{p.OS, p.Arch}]
	if !ok {
		return "", false
	}
	t := c.cpu + "_" + c.vendorOS
	if p.OS == "linux" {
		libc := p.Libc
		if libc == LibcNone {
			libc = LibcGNU
		}
		t += "_" + string(libc)
	}
	return t, true
}

type key struct{ os, arch string }

type convention struct {
	cpu            string
	vendorOS       string
	resourcePrefix string
}

var conventions = map[key]convention{
	{"linux", "amd64"}:   {cpu: "x86_64", vendorOS: "unknown_linux", resourcePrefix: "linux-x86-64"},
	{"linux", "arm64"}:   {cpu: "aarch64", vendorOS: "unknown_linux", resourcePrefix: "linux-aarch64"},
	{"darwin", "amd64"}:  {cpu: "x86_64", vendorOS: "apple_darwin", resourcePrefix: "darwin-x86-64"},
	{"darwin", "arm64"}:  {cpu: "aarch64", vendorOS: "apple_darwin", resourcePrefix: "darwin-aarch64"},
	{"windows", "amd64"}: {cpu: "x86_64", vendorOS: "pc_windows_msvc", resourcePrefix: "win32-x86-64"},
	{"windows", "arm64"}: {cpu: "aarch64", vendorOS: "pc_windows_msvc", resourcePrefix: "win32-aarch64"},
}
