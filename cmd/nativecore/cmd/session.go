package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/config"
	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/locator"
	"github.com/Aman-CERP/nativecore/internal/logging"
)

// session is the configuration, catalog and locator a command works with.
type session struct {
	root    string
	cfg     *config.Config
	catalog *component.Catalog
	locator *locator.Locator
	logger  *slog.Logger
	cleanup func()
}

// openSession loads configuration for the project containing the working
// directory. overrides are identity=path pairs from --override and win over
// every other source.
func openSession(cmd *cobra.Command, overrides map[string]string) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	for id, path := range overrides {
		cfg.SetOverride(id, path)
	}

	logger, cleanup, err := sessionLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := component.Load(cfg)
	if err != nil {
		cleanup()
		return nil, err
	}
	warnStrayOverrides(logger, cfg, catalog)

	loc, err := locator.FromConfig(cfg, catalog, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &session{
		root:    root,
		cfg:     cfg,
		catalog: catalog,
		locator: loc,
		logger:  logger,
		cleanup: cleanup,
	}, nil
}

func (s *session) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// identities returns args after checking each against the catalog, or every
// catalog entry when args is empty.
func (s *session) identities(args []string) ([]string, error) {
	if len(args) == 0 {
		return s.catalog.Identities(), nil
	}
	for _, id := range args {
		if _, err := s.catalog.Lookup(id); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// sessionLogger returns the --debug logger when enabled, else a logger built
// from the logging section of cfg.
func sessionLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	if debugMode {
		return slog.Default(), func() {}, nil
	}
	if cfg.Logging.File == "" {
		return logging.New(cmd.ErrOrStderr(), cfg.Logging.Level), func() {}, nil
	}
	return logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		FilePath:  cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
}

// warnStrayOverrides logs override variables that match no component, which
// usually means a typo in the identity.
func warnStrayOverrides(logger *slog.Logger, cfg *config.Config, catalog *component.Catalog) {
	for _, key := range cfg.OverrideEnvIdentities() {
		if _, ok := catalog.MatchEnvKey(key); !ok {
			logger.Warn("library override matches no component",
				slog.String("variable", key+config.OverrideEnvSuffix))
		}
	}
}

// parseOverrides validates --override values.
func parseOverrides(values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for id, path := range values {
		id = strings.TrimSpace(id)
		if id == "" || path == "" {
			return nil, nerrors.ConfigurationError(nerrors.ErrCodeOverrideInvalid,
				fmt.Sprintf("invalid --override %q=%q", id, path), nil).
				WithSuggestion("Use --override <identity>=<path>")
		}
		out[id] = path
	}
	return out, nil
}
