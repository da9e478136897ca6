// Package cmd provides the CLI commands for nativecore.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/logging"
	"github.com/Aman-CERP/nativecore/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for nativecore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nativecore",
		Short: "Locate and load native SDK libraries",
		Long: `nativecore finds the shared library behind each native SDK component,
applies its log level and loads it exactly once.

Libraries are found through an explicit override (config file, .env or
<ID>_LIBRARY_OVERRIDE) or else at the platform's conventional path under
the resource directory.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetVersionTemplate("nativecore version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.nativecore/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging enables debug logging if --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes and closes the debug log.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		if _, reported := err.(*reportedError); !reported {
			_, _ = fmt.Fprint(os.Stderr, nerrors.FormatForCLI(err))
		}
		// Cobra skips post-run hooks on failure.
		_ = stopLogging(root, nil)
	}
	return err
}

// reportedError marks a failure whose details were already printed.
type reportedError struct {
	message string
}

func (e *reportedError) Error() string {
	return e.message
}
