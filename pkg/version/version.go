// Package version reports how the nativecore binary was built, including
// the purego release that backs native library loading.
//
// Version, Commit and Date are stamped with -ldflags, for example
//
//	-X github.com/Aman-CERP/nativecore/pkg/version.Version=$(VERSION)
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release, or "dev" for unstamped builds.
var Version = "dev"

var (
	// Commit is the short git revision.
	Commit = "unknown"

	// Date is the RFC3339 build time.
	Date = "unknown"

	// GoVersion is the toolchain that compiled the binary.
	GoVersion = runtime.Version()
)

// LoaderModule is the module that performs dlopen without cgo.
const LoaderModule = "github.com/ebitengine/purego"

// BuildInfo is what `nativecore version --json` prints. Loader is empty
// when the binary carries no module information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Loader    string `json:"loader,omitempty"`
}

// String is the one-line banner. The purego version is appended when known
// since native load failures often depend on it.
func String() string {
	s := fmt.Sprintf("nativecore %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
	if loader := DependencyVersion(LoaderModule); loader != "" {
		s += " purego " + loader
	}
	return s
}

// Short is the bare version.
func Short() string {
	return Version
}

// GetInfo collects build and target details for the running binary.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Loader:    DependencyVersion(LoaderModule),
	}
}

// DependencyVersion returns the version of module path linked into the
// binary, or "" when build info is unavailable (as in some test binaries).
func DependencyVersion(path string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range bi.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}
