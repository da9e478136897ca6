// Package locator decides which shared-library file backs a component.
//
// An override wins when present and non-empty and is returned verbatim.
// Otherwise the path is derived from the resource directory, the library
// layout and the platform's naming conventions. Results are cached per
// Locator; resolution never touches the filesystem.
package locator

import (
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/platform"
)

// DefaultCacheSize bounds the number of cached resolutions.
const DefaultCacheSize = 64

// Source says how a path was chosen.
type Source string

const (
	SourceOverride     Source = "override"
	SourceConventional Source = "conventional"
)

// Resolution is the outcome of resolving one identity.
type Resolution struct {
	Identity string        `json:"identity"`
	Path     string        `json:"path"`
	Source   Source        `json:"source"`
	Origin   config.Origin `json:"origin,omitempty"`
	Platform string        `json:"platform"`
	Layout   string        `json:"layout,omitempty"`
}

// OverrideSource supplies per-identity path overrides. *config.Config
// implements it.
type OverrideSource interface {
	Override(identity string) (path string, origin config.Origin, ok bool)
}

// Options configures a Locator.
type Options struct {
	Catalog     *component.Catalog
	Overrides   OverrideSource
	Platform    platform.Platform
	ResourceDir string
	Layout      platform.Layout
	CacheSize   int
	Logger      *slog.Logger
}

// Locator resolves component identities to library paths.
type Locator struct {
	catalog     *component.Catalog
	overrides   OverrideSource
	platform    platform.Platform
	resourceDir string
	layout      platform.Layout
	cache       *lru.Cache[string, Resolution]
	logger      *slog.Logger
}

// New creates a Locator. A nil Catalog means the built-in catalog and an
// empty Layout means flat.
func New(opts Options) (*Locator, error) {
	if opts.Catalog == nil {
		opts.Catalog = component.Builtin()
	}
	if opts.Layout == "" {
		opts.Layout = platform.LayoutFlat
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cache, err := lru.New[string, Resolution](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create resolution cache: %w", err)
	}
	return &Locator{
		catalog:     opts.Catalog,
		overrides:   opts.Overrides,
		platform:    opts.Platform,
		resourceDir: opts.ResourceDir,
		layout:      opts.Layout,
		cache:       cache,
		logger:      opts.Logger,
	}, nil
}

// FromConfig builds a Locator for the current platform from cfg.
func FromConfig(cfg *config.Config, catalog *component.Catalog, logger *slog.Logger) (*Locator, error) {
	return New(Options{
		Catalog:     catalog,
		Overrides:   cfg,
		Platform:    platform.Current(),
		ResourceDir: cfg.ResourceDir(),
		Layout:      cfg.LibraryLayout(),
		Logger:      logger,
	})
}

// Catalog returns the catalog identities are checked against.
func (l *Locator) Catalog() *component.Catalog {
	return l.catalog
}

// Platform returns the platform conventional paths are computed for.
func (l *Locator) Platform() platform.Platform {
	return l.platform
}

// Resolve returns the library path for identity.
func (l *Locator) Resolve(identity string) (string, error) {
	r, err := l.Explain(identity)
	if err != nil {
		return "", err
	}
	return r.Path, nil
}

// Explain resolves identity and reports how the path was chosen.
func (l *Locator) Explain(identity string) (Resolution, error) {
	if r, ok := l.cache.Get(identity); ok {
		return r, nil
	}

	def, err := l.catalog.Lookup(identity)
	if err != nil {
		return Resolution{}, err
	}

	r := Resolution{Identity: identity, Platform: l.platform.String()}

	if l.overrides != nil {
		if path, origin, ok := l.overrides.Override(identity); ok && path != "" {
			if strings.IndexByte(path, 0) >= 0 {
				return Resolution{}, nerrors.ConfigurationError(nerrors.ErrCodeOverrideInvalid,
					fmt.Sprintf("library override for %q contains a NUL byte", identity), nil).
					WithDetail("component", identity).
					WithDetail("origin", string(origin)).
					WithSuggestion("Set " + config.OverrideEnvVar(identity) + " to a plain file path")
			}
			r.Path = path
			r.Source = SourceOverride
			r.Origin = origin
			l.remember(r)
			return r, nil
		}
	}

	path, ok := l.platform.LibraryPath(l.resourceDir, def.BaseName(), def.Namespace, l.layout)
	if !ok {
		return Resolution{}, nerrors.ConfigurationError(nerrors.ErrCodePlatformUnsupported,
			fmt.Sprintf("no conventional library path for %q on %s", identity, l.platform), nil).
			WithDetail("component", identity).
			WithDetail("platform", l.platform.String()).
			WithSuggestion("Set " + config.OverrideEnvVar(identity) + " to the library path")
	}
	r.Path = path
	r.Source = SourceConventional
	r.Layout = string(l.layout)
	l.remember(r)
	return r, nil
}

func (l *Locator) remember(r Resolution) {
	l.cache.Add(r.Identity, r)
	l.logger.Debug("resolved native library",
		slog.String("component", r.Identity),
		slog.String("path", r.Path),
		slog.String("source", string(r.Source)),
		slog.String("origin", string(r.Origin)))
}
