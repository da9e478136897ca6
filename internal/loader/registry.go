package loader

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/logging"
)

// DefaultParallelism bounds concurrent loads in EnsureAll.
const DefaultParallelism = 4

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Options

	// Catalog lists the components that may be loaded. Nil means the
	// built-in catalog.
	Catalog *component.Catalog
	// Resolver maps identities to paths.
	Resolver Resolver
	// LogLevel returns the configured native level for an identity, or ""
	// to leave it to the component. *config.Config's NativeLogLevel fits.
	LogLevel func(identity string) string
	// Parallelism bounds EnsureAll. Zero means DefaultParallelism.
	Parallelism int
}

// Registry owns at most one Initializer per component identity.
type Registry struct {
	opts RegistryOptions

	mu    sync.Mutex
	inits map[string]*Initializer
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Catalog == nil {
		opts.Catalog = component.Builtin()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{opts: opts, inits: map[string]*Initializer{}}
}

// Catalog returns the registry's catalog.
func (r *Registry) Catalog() *component.Catalog {
	return r.opts.Catalog
}

// Initializer returns the Initializer for identity, creating it on first use
// with the configured log level applied.
func (r *Registry) Initializer(identity string) (*Initializer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if init, ok := r.inits[identity]; ok {
		return init, nil
	}

	def, err := r.opts.Catalog.Lookup(identity)
	if err != nil {
		return nil, err
	}

	init := NewInitializer(def, r.opts.Resolver, r.opts.Options)
	if r.opts.LogLevel != nil {
		if name := r.opts.LogLevel(identity); name != "" {
			level, err := logging.ParseLevel(name)
			if err != nil {
				return nil, err
			}
			init.SetLogLevel(level)
		}
	}
	r.inits[identity] = init
	return init, nil
}

// EnsureLoaded loads identity if needed and returns its handle.
func (r *Registry) EnsureLoaded(identity string) (*Handle, error) {
	init, err := r.Initializer(identity)
	if err != nil {
		return nil, err
	}
	return init.EnsureLoaded()
}

// Result is the outcome of loading one component.
type Result struct {
	Identity string
	Handle   *Handle
	Err      error
}

// EnsureAll loads every listed identity (all catalog entries when none are
// given), at most Parallelism at a time. Results are in the order requested.
// The returned error joins every failure.
func (r *Registry) EnsureAll(ctx context.Context, identities ...string) ([]Result, error) {
	if len(identities) == 0 {
		identities = r.opts.Catalog.Identities()
	}

	results := make([]Result, len(identities))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for idx, id := range identities {
		results[idx].Identity = id
		g.Go(func() error {
			init, err := r.Initializer(id)
			if err != nil {
				results[idx].Err = err
				return nil
			}
			results[idx].Handle, results[idx].Err = init.EnsureLoadedContext(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Status is a point-in-time view of one Initializer.
type Status struct {
	Identity string `json:"identity"`
	State    string `json:"state"`
	Path     string `json:"path,omitempty"`
	LoadID   string `json:"load_id,omitempty"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// Snapshot reports the state of every Initializer created so far, sorted by
// identity.
func (r *Registry) Snapshot() []Status {
	r.mu.Lock()
	inits := make([]*Initializer, 0, len(r.inits))
	for _, init := range r.inits {
		inits = append(inits, init)
	}
	r.mu.Unlock()

	out := make([]Status, 0, len(inits))
	for _, init := range inits {
		st := Status{
			Identity: init.Identity(),
			State:    init.State().String(),
			Attempts: init.Attempts(),
		}
		if h := init.Handle(); h != nil {
			st.Path = h.Path()
			st.LoadID = h.ID()
		}
		if err := init.Err(); err != nil {
			st.Error = err.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}
