package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/locator"
	"github.com/Aman-CERP/nativecore/internal/native"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status as its name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name      string      `json:"name"`
	Component string      `json:"component,omitempty"`
	Status    CheckStatus `json:"status"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
	Required  bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Inspector reads a library file without loading it.
type Inspector func(path string) (native.FileInfo, error)

// Checker performs preflight validation checks.
type Checker struct {
	verbose     bool
	output      io.Writer
	locator     *locator.Locator
	resourceDir string
	goos        string
	goarch      string
	inspect     Inspector
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithLocator sets the locator used to resolve components.
func WithLocator(l *locator.Locator) Option {
	return func(c *Checker) {
		c.locator = l
	}
}

// WithResourceDir sets the directory conventional paths live under.
func WithResourceDir(dir string) Option {
	return func(c *Checker) {
		c.resourceDir = dir
	}
}

// WithTarget sets the GOOS and GOARCH libraries must match.
func WithTarget(goos, goarch string) Option {
	return func(c *Checker) {
		c.goos = goos
		c.goarch = goarch
	}
}

// WithInspector replaces native.Inspect.
func WithInspector(fn Inspector) Option {
	return func(c *Checker) {
		c.inspect = fn
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:  os.Stdout,
		goos:    runtime.GOOS,
		goarch:  runtime.GOARCH,
		inspect: native.Inspect,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks for the given identities, or for every
// catalog entry when none are given.
func (c *Checker) RunAll(ctx context.Context, identities ...string) []CheckResult {
	var results []CheckResult

	results = append(results, c.CheckPlatform())
	if c.resourceDir != "" {
		results = append(results, c.CheckResourceDir(c.resourceDir))
	}

	if c.locator == nil {
		return results
	}
	if len(identities) == 0 {
		identities = c.locator.Catalog().Identities()
	}
	for _, id := range identities {
		if ctx.Err() != nil {
			results = append(results, CheckResult{
				Name:      "canceled",
				Component: id,
				Status:    StatusFail,
				Message:   ctx.Err().Error(),
				Required:  true,
			})
			break
		}
		results = append(results, c.CheckComponent(id)...)
	}
	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "Native Component Check")
	_, _ = fmt.Fprintln(c.output, "======================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.label(), r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	status := c.SummaryStatus(results)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(status))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.label()+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.label()+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errors))
		for _, e := range errors {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

func (r CheckResult) label() string {
	if r.Component == "" {
		return r.Name
	}
	return r.Component + "/" + r.Name
}

// CheckPlatform reports whether the target platform has naming conventions.
// Overrides still work on unsupported platforms, so failure is not critical.
func (c *Checker) CheckPlatform() CheckResult {
	result := CheckResult{Name: "platform"}
	if c.locator == nil {
		result.Status = StatusPass
		result.Message = c.goos + "/" + c.goarch
		return result
	}

	p := c.locator.Platform()
	if !p.Supported() {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s has no conventional library paths", p)
		result.Details = "components need an explicit library override"
		return result
	}
	result.Status = StatusPass
	result.Message = p.String()
	if triple, ok := p.Triple(); ok {
		result.Details = "target triple " + triple
	}
	return result
}

// CheckResourceDir checks that dir exists and is a directory.
func (c *Checker) CheckResourceDir(dir string) CheckResult {
	result := CheckResult{Name: "resource_dir"}

	info, err := os.Stat(dir)
	switch {
	case err != nil:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s: %v", dir, err)
		result.Details = "only overridden components can load"
	case !info.IsDir():
		result.Status = StatusFail
		result.Message = dir + " is not a directory"
	default:
		result.Status = StatusPass
		result.Message = dir
	}
	return result
}

// CheckComponent resolves identity and checks the library file. Checks stop
// at the first failure since later ones depend on it.
func (c *Checker) CheckComponent(identity string) []CheckResult {
	res, err := c.locator.Explain(identity)
	resolve := CheckResult{Name: "resolve", Component: identity, Required: true}
	if err != nil {
		resolve.Status = StatusFail
		resolve.Message = err.Error()
		if ne, ok := nerrors.As(err); ok {
			resolve.Details = ne.Suggestion
		}
		return []CheckResult{resolve}
	}
	resolve.Status = StatusPass
	resolve.Message = res.Path
	resolve.Details = "source " + string(res.Source)
	if res.Origin != "" {
		resolve.Details += " (" + string(res.Origin) + ")"
	}
	results := []CheckResult{resolve}

	file := CheckResult{Name: "file", Component: identity, Required: true}
	info, err := os.Stat(res.Path)
	if err != nil || info.IsDir() {
		file.Status = StatusFail
		if err != nil {
			file.Message = err.Error()
		} else {
			file.Message = res.Path + " is a directory"
		}
		file.Details = "set " + config.OverrideEnvVar(identity) + " or install the library"
		return append(results, file)
	}
	file.Status = StatusPass
	file.Message = formatBytes(uint64(info.Size()))
	results = append(results, file)

	format := CheckResult{Name: "format", Component: identity, Required: true}
	fi, err := c.inspect(res.Path)
	if err != nil {
		format.Status = StatusFail
		format.Message = err.Error()
		return append(results, format)
	}
	want := native.ExpectedFormat(c.goos)
	switch {
	case fi.Format != want:
		format.Status = StatusFail
		format.Message = fmt.Sprintf("%s file, %s loads %s", fi.Format, c.goos, want)
	case fi.Arch != c.goarch:
		format.Status = StatusFail
		format.Message = fmt.Sprintf("built for %q, process is %s", fi.Arch, c.goarch)
	default:
		format.Status = StatusPass
		format.Message = fmt.Sprintf("%s %s", fi.Format, fi.Arch)
	}
	results = append(results, format)
	if format.Status != StatusPass {
		return results
	}

	return append(results, c.checkSymbols(identity, fi))
}

func (c *Checker) checkSymbols(identity string, fi native.FileInfo) CheckResult {
	result := CheckResult{Name: "symbols", Component: identity, Required: true}

	def, err := c.locator.Catalog().Lookup(identity)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}
	required := def.RequiredSymbols()
	if len(required) == 0 {
		result.Status = StatusPass
		result.Message = "no symbols required"
		return result
	}
	if len(fi.Exports) == 0 {
		result.Status = StatusWarn
		result.Required = false
		result.Message = fmt.Sprintf("exports are not readable from %s files", fi.Format)
		return result
	}

	var missing []string
	for _, name := range required {
		if !fi.HasExport(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%d of %d symbols missing", len(missing), len(required))
		result.Details = strings.Join(missing, ", ")
		return result
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d symbols exported", len(required))
	return result
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
