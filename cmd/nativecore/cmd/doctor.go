package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nativecore/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
		overrides  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "doctor [identity...]",
		Short: "Check that native components can be loaded",
		Long: `Run diagnostics without loading any library.

Checks:
  - Platform has conventional library paths
  - Resource directory exists
  - Each component resolves to an existing file
  - The file's format and architecture match this process
  - The file exports every symbol the bindings need

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  # Run diagnostics
  nativecore doctor

  # Verbose output with details
  nativecore doctor --verbose

  # JSON output for scripting
  nativecore doctor --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args, overrides, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringToStringVar(&overrides, "override", nil, "Library path override as identity=path (repeatable)")

	return cmd
}

func runDoctor(cmd *cobra.Command, args []string, rawOverrides map[string]string, verbose, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides, err := parseOverrides(rawOverrides)
	if err != nil {
		return err
	}
	s, err := openSession(cmd, overrides)
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.identities(args)
	if err != nil {
		return err
	}

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithLocator(s.locator),
		preflight.WithResourceDir(s.cfg.ResourceDir()),
	)

	results := checker.RunAll(ctx, ids...)

	if jsonOutput {
		if err := outputJSON(cmd, checker, results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return &reportedError{message: "native component check failed"}
	}
	return nil
}

// JSONOutput is the structure for JSON output.
type JSONOutput struct {
	Status string                  `json:"status"`
	Checks []preflight.CheckResult `json:"checks"`
}

func outputJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(JSONOutput{
		Status: checker.SummaryStatus(results),
		Checks: results,
	})
}
