package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/loader"
	"github.com/Aman-CERP/nativecore/internal/logging"
	"github.com/Aman-CERP/nativecore/internal/native"
	"github.com/Aman-CERP/nativecore/internal/output"
)

type probeOptions struct {
	logLevel    string
	overrides   map[string]string
	jsonOutput  bool
	metricsFile string
	parallelism int
}

func newProbeCmd() *cobra.Command {
	var opts probeOptions

	cmd := &cobra.Command{
		Use:   "probe [identity...]",
		Short: "Load native components and report the result",
		Long: `Resolve, open and bind each named component (every known component
when none are named). Each component is loaded at most once.

The native log level comes from --log-level, then <ID>_SDK_LOG_LEVEL,
then the native section of the configuration.`,
		Example: `  # Load every known component
  nativecore probe

  # Load tbdex from a development build with verbose native logging
  nativecore probe tbdex --override tbdex=./target/debug/libtbdex_uniffi.so --log-level debug

  # Machine-readable output and Prometheus metrics
  nativecore probe --json --metrics-file probe.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Native log level (trace, debug, info, warn, error)")
	cmd.Flags().StringToStringVar(&opts.overrides, "override", nil, "Library path override as identity=path (repeatable)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write load metrics in Prometheus text format")
	cmd.Flags().IntVar(&opts.parallelism, "parallel", loader.DefaultParallelism, "Components loaded concurrently")

	return cmd
}

// probeResult is the JSON form of one component's outcome.
type probeResult struct {
	Identity        string          `json:"identity"`
	Loaded          bool            `json:"loaded"`
	Path            string          `json:"path,omitempty"`
	LoadID          string          `json:"load_id,omitempty"`
	ContractVersion int             `json:"contract_version,omitempty"`
	Symbols         int             `json:"symbols,omitempty"`
	LoadedAt        *time.Time      `json:"loaded_at,omitempty"`
	Error           json.RawMessage `json:"error,omitempty"`
}

func runProbe(cmd *cobra.Command, args []string, opts probeOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var level logging.Level
	if opts.logLevel != "" {
		var err error
		if level, err = logging.ParseLevel(opts.logLevel); err != nil {
			return err
		}
	}
	overrides, err := parseOverrides(opts.overrides)
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

	reg := prometheus.NewRegistry()
	registry := loader.NewRegistry(loader.RegistryOptions{
		Options: loader.Options{
			Opener:  native.System(),
			Metrics: loader.NewMetrics(reg),
			Logger:  s.logger,
		},
		Catalog:     s.catalog,
		Resolver:    s.locator,
		LogLevel:    s.cfg.NativeLogLevel,
		Parallelism: opts.parallelism,
	})

	if opts.logLevel != "" {
		for _, id := range ids {
			init, err := registry.Initializer(id)
			if err != nil {
				return err
			}
			init.SetLogLevel(level)
		}
	}

	results, loadErr := registry.EnsureAll(ctx, ids...)

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if opts.jsonOutput {
		if err := writeProbeJSON(cmd, results); err != nil {
			return err
		}
	} else {
		printProbe(output.NewAuto(cmd.OutOrStdout()), results)
	}

	if loadErr != nil {
		return &reportedError{message: "one or more components failed to load"}
	}
	return nil
}

func printProbe(out *output.Writer, results []loader.Result) {
	for _, res := range results {
		if res.Err != nil {
			out.Errorf("%s failed to load", res.Identity)
			out.Code(nerrors.FormatForCLI(res.Err))
			if nerrors.IsRetryable(res.Err) {
				out.Dim("Correct the configuration and probe again to retry the load")
			}
			continue
		}
		out.Successf("Successfully loaded shared library for %s", res.Handle.Path())
		out.KeyValue("Component", res.Identity, 9)
		out.KeyValue("Contract", fmt.Sprintf("%d", res.Handle.ContractVersion()), 9)
		out.KeyValue("Symbols", fmt.Sprintf("%d bound", len(res.Handle.Symbols())), 9)
		out.KeyValue("Load ID", res.Handle.ID(), 9)
	}
}

func writeProbeJSON(cmd *cobra.Command, results []loader.Result) error {
	out := make([]probeResult, 0, len(results))
	for _, res := range results {
		pr := probeResult{Identity: res.Identity}
		if res.Err != nil {
			data, err := nerrors.FormatJSON(res.Err)
			if err != nil {
				return err
			}
			pr.Error = data
		} else {
			loadedAt := res.Handle.LoadedAt()
			pr.Loaded = true
			pr.Path = res.Handle.Path()
			pr.LoadID = res.Handle.ID()
			pr.ContractVersion = res.Handle.ContractVersion()
			pr.Symbols = len(res.Handle.Symbols())
			pr.LoadedAt = &loadedAt
		}
		out = append(out, pr)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"results": out})
}
