// Package main is the end-to-end check run against an installed tbdex
// library: it resolves the library the way applications do, loads it with
// native debug logging on and exits non-zero on any failure.
//
// Usage:
//
//	TBDEX_LIBRARY_OVERRIDE=/path/to/libtbdex.so nativecore-acceptance [identity]
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/loader"
	"github.com/Aman-CERP/nativecore/internal/locator"
	"github.com/Aman-CERP/nativecore/internal/logging"
)

func main() {
	identity := component.TbdexIdentity
	if len(os.Args) > 1 {
		identity = os.Args[1]
	}

	fmt.Printf("nativecore acceptance: %s on %s/%s\n", identity, runtime.GOOS, runtime.GOARCH)

	opts := loader.Options{Logger: logging.New(os.Stderr, "debug")}
	if err := run(os.Stdout, identity, opts); err != nil {
		fmt.Fprint(os.Stderr, nerrors.FormatForUser(err, true))
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}
}

// run loads identity twice through one initializer and reports each step on
// out. opts supplies the opener and logger.
func run(out io.Writer, identity string, opts loader.Options) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
		opts.Logger = logger
	}

	catalog, err := component.Load(cfg)
	if err != nil {
		return err
	}
	def, err := catalog.Lookup(identity)
	if err != nil {
		return err
	}
	loc, err := locator.FromConfig(cfg, catalog, logger)
	if err != nil {
		return err
	}

	res, err := loc.Explain(identity)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Resolved %s (%s)\n", res.Path, res.Source)

	init := loader.NewInitializer(def, loc, opts)
	init.SetLogLevel(logging.LevelDebug)

	handle, err := init.EnsureLoaded()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Successfully loaded shared library for %s\n", handle.Path())

	// A second call must return the same handle without reopening.
	again, err := init.EnsureLoaded()
	if err != nil {
		return err
	}
	if again != handle || init.Attempts() != 1 {
		return nerrors.InternalError("second load returned a different handle", nil)
	}

	_, _ = fmt.Fprintf(out, "Contract version %d, %d symbols bound\n", handle.ContractVersion(), len(handle.Symbols()))
	_, _ = fmt.Fprintln(out, "ACCEPTANCE PASSED")
	return nil
}
