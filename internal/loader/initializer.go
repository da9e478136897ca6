// Package loader loads native components exactly once per process.
//
// An Initializer moves through Unloaded -> Loading -> Loaded or Failed.
// The first EnsureLoaded call performs the load on its own goroutine; calls
// that arrive while it runs wait for the same attempt and share its result.
// Loaded is terminal. Failed is sticky until Retry is called.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/logging"
	"github.com/Aman-CERP/nativecore/internal/native"
)

// State is the lifecycle state of an Initializer.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// States returns every state in lifecycle order.
func States() []State {
	return []State{StateUnloaded, StateLoading, StateLoaded, StateFailed}
}

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Resolver maps a component identity to a library path.
// *locator.Locator implements it.
type Resolver interface {
	Resolve(identity string) (string, error)
}

// Options configures an Initializer. Zero values select the system loader,
// os.Setenv, no metrics and slog.Default().
type Options struct {
	Opener  native.Opener
	Setenv  func(key, value string) error
	Metrics *Metrics
	Logger  *slog.Logger
}

// attempt is one load attempt. done is closed once handle or err is set.
type attempt struct {
	done   chan struct{}
	handle *Handle
	err    error
}

// Initializer loads one component on first use.
type Initializer struct {
	def     component.Definition
	opener  native.Opener
	setenv  func(key, value string) error
	metrics *Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	resolver Resolver
	state    State
	level    logging.Level
	levelSet bool
	current  *attempt
	attempts int
}

// NewInitializer returns an Unloaded initializer for def.
func NewInitializer(def component.Definition, resolver Resolver, opts Options) *Initializer {
	if opts.Opener == nil {
		opts.Opener = native.System()
	}
	if opts.Setenv == nil {
		opts.Setenv = os.Setenv
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	i := &Initializer{
		def:      def,
		opener:   opts.Opener,
		setenv:   opts.Setenv,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With(slog.String("component", def.Identity)),
		resolver: resolver,
	}
	i.metrics.setState(def.Identity, StateUnloaded)
	return i
}

// Identity returns the component identity.
func (i *Initializer) Identity() string {
	return i.def.Identity
}

// State returns the current state.
func (i *Initializer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Attempts returns how many load attempts have started.
func (i *Initializer) Attempts() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.attempts
}

// Err returns the recorded failure while Failed, nil otherwise.
func (i *Initializer) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StateFailed || i.current == nil {
		return nil
	}
	return i.current.err
}

// Handle returns the loaded handle, or nil before a successful load.
func (i *Initializer) Handle() *Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StateLoaded {
		return nil
	}
	return i.current.handle
}

// SetLogLevel sets the level handed to the native logger by the next load
// attempt. It reports whether the level was taken: once a load has started
// the call is logged and ignored.
func (i *Initializer) SetLogLevel(level logging.Level) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateLoading || i.state == StateLoaded {
		i.logger.Debug("log level ignored after load started",
			slog.String("level", level.String()),
			slog.String("state", i.state.String()))
		return false
	}
	i.level = level
	i.levelSet = true
	return true
}

// LogLevel returns the level that will be or was applied, and whether one
// was set.
func (i *Initializer) LogLevel() (logging.Level, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.level, i.levelSet
}

// SetResolver replaces the resolver used by the next attempt, typically to
// pick up a corrected override before Retry. It fails once a load has started
// or succeeded.
func (i *Initializer) SetResolver(r Resolver) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateLoading || i.state == StateLoaded {
		return nerrors.New(nerrors.ErrCodeInvalidState,
			fmt.Sprintf("cannot change resolver for %q while %s", i.def.Identity, i.state), nil)
	}
	i.resolver = r
	return nil
}

// EnsureLoaded loads the component if needed and returns its handle.
// Concurrent callers share a single attempt. After a failure it returns the
// recorded error without loading again; use Retry to try again.
func (i *Initializer) EnsureLoaded() (*Handle, error) {
	return i.ensure(context.Background(), false)
}

// EnsureLoadedContext is EnsureLoaded, except that a caller waiting on
// another goroutine's attempt stops waiting when ctx is done. The attempt
// itself is never interrupted.
func (i *Initializer) EnsureLoadedContext(ctx context.Context) (*Handle, error) {
	return i.ensure(ctx, false)
}

// Retry starts a new attempt if the last one failed. In any other state it
// behaves like EnsureLoaded.
func (i *Initializer) Retry() (*Handle, error) {
	return i.ensure(context.Background(), true)
}

func (i *Initializer) ensure(ctx context.Context, retry bool) (*Handle, error) {
	i.mu.Lock()
	switch i.state {
	case StateLoaded:
		h := i.current.handle
		i.mu.Unlock()
		return h, nil

	case StateFailed:
		if !retry {
			err := i.current.err
			i.mu.Unlock()
			return nil, err
		}
		i.logger.Info("retrying native load", slog.Int("previous_attempts", i.attempts))

	case StateLoading:
		a := i.current
		i.mu.Unlock()
		select {
		case <-a.done:
			return a.handle, a.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		i.mu.Unlock()
		return nil, err
	}

	a := &attempt{done: make(chan struct{})}
	i.current = a
	i.state = StateLoading
	i.attempts++
	resolver := i.resolver
	level, levelSet := i.level, i.levelSet
	i.mu.Unlock()

	i.metrics.setState(i.def.Identity, StateLoading)
	i.metrics.attemptStarted(i.def.Identity)

	start := time.Now()
	a.handle, a.err = i.safeLoad(resolver, level, levelSet)
	elapsed := time.Since(start)

	i.mu.Lock()
	if a.err != nil {
		i.state = StateFailed
	} else {
		i.state = StateLoaded
	}
	final := i.state
	i.mu.Unlock()
	close(a.done)

	i.metrics.attemptFinished(i.def.Identity, nerrors.GetCode(a.err), elapsed)
	i.metrics.setState(i.def.Identity, final)
	if a.err != nil {
		i.logger.Error("native load failed",
			append(nerrors.LogAttrs(a.err), slog.Duration("elapsed", elapsed))...)
	} else {
		i.logger.Info("native library loaded",
			slog.String("path", a.handle.Path()),
			slog.String("load_id", a.handle.ID()),
			slog.Duration("elapsed", elapsed))
	}
	return a.handle, a.err
}

// safeLoad turns a panic during an attempt into an error so waiters are
// always released.
func (i *Initializer) safeLoad(resolver Resolver, level logging.Level, levelSet bool) (h *Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = nerrors.InternalError(fmt.Sprintf("panic while loading %q: %v", i.def.Identity, r), nil)
		}
	}()
	return i.load(resolver, level, levelSet)
}

// load runs one attempt: resolve, apply the log level, open, bind and check
// the contract version.
func (i *Initializer) load(resolver Resolver, level logging.Level, levelSet bool) (*Handle, error) {
	id := i.def.Identity
	if resolver == nil {
		return nil, nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("no resolver configured for %q", id), nil)
	}

	path, err := resolver.Resolve(id)
	if err != nil {
		return nil, err
	}

	if levelSet {
		if i.def.LogLevelEnv == "" {
			i.logger.Warn("component has no log level variable; level not applied",
				slog.String("level", level.String()))
		} else if err := i.setenv(i.def.LogLevelEnv, level.NativeValue()); err != nil {
			return nil, nerrors.InternalError(
				fmt.Sprintf("failed to set %s", i.def.LogLevelEnv), err)
		} else {
			i.logger.Debug("native log level applied",
				slog.String("env", i.def.LogLevelEnv),
				slog.String("level", level.NativeValue()))
		}
	}

	i.logger.Debug("opening native library", slog.String("path", path))
	lib, err := i.opener.Open(path)
	if err != nil {
		code := nerrors.ErrCodeLibraryInvalid
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			code = nerrors.ErrCodeLibraryNotFound
		}
		return nil, nerrors.LoadError(code, id, path, err.Error(), err).
			WithSuggestion("Check the file exists and matches this platform, or set " +
				config.OverrideEnvVar(id))
	}

	h, err := bind(i.def, lib)
	if err != nil {
		_ = lib.Close()
		return nil, err
	}
	return h, nil
}

// bind resolves every required symbol and verifies the contract version.
func bind(def component.Definition, lib native.Library) (*Handle, error) {
	h := newHandle(def, lib)

	var missing, diagnostics []string
	for _, name := range def.RequiredSymbols() {
		addr, err := lib.Lookup(name)
		if err != nil {
			missing = append(missing, name)
			diagnostics = append(diagnostics, err.Error())
			continue
		}
		h.symbols[name] = addr
	}
	if len(missing) > 0 {
		return nil, nerrors.LoadError(nerrors.ErrCodeSymbolMissing, def.Identity, lib.Path(),
			strings.Join(diagnostics, "; "), nil).
			WithDetail("missing", strings.Join(missing, ","))
	}

	if def.ContractVersion > 0 {
		var contractVersion func() uint32
		if err := lib.Bind(&contractVersion, def.ContractSymbol()); err != nil {
			return nil, nerrors.LoadError(nerrors.ErrCodeSymbolMissing, def.Identity, lib.Path(), err.Error(), err)
		}
		got := contractVersion()
		if int(got) != def.ContractVersion {
			return nil, nerrors.LoadError(nerrors.ErrCodeContractMismatch, def.Identity, lib.Path(),
				fmt.Sprintf("contract version %d, bindings expect %d", got, def.ContractVersion), nil).
				WithSuggestion("Rebuild the library and bindings from the same source")
		}
		h.contractVersion = int(got)
	}
	return h, nil
}
