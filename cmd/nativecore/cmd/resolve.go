package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nativecore/internal/locator"
	"github.com/Aman-CERP/nativecore/internal/output"
)

func newResolveCmd() *cobra.Command {
	var (
		overrides  map[string]string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [identity...]",
		Short: "Show which library path each component resolves to",
		Long: `Print the library path each component would load from, and whether it
came from an override or the platform's conventional location. Nothing is
opened.`,
		Example: `  # Where would tbdex load from?
  nativecore resolve tbdex

  # Check an override without loading it
  nativecore resolve --override tbdex=/opt/lib/libtbdex.so --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, overrides, jsonOutput)
		},
	}

	cmd.Flags().StringToStringVar(&overrides, "override", nil, "Library path override as identity=path (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string, rawOverrides map[string]string, jsonOutput bool) error {
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

	resolutions := make([]locator.Resolution, 0, len(ids))
	for _, id := range ids {
		r, err := s.locator.Explain(id)
		if err != nil {
			return err
		}
		resolutions = append(resolutions, r)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolutions)
	}

	out := output.NewAuto(cmd.OutOrStdout())
	for n, r := range resolutions {
		if n > 0 {
			out.Newline()
		}
		out.Header(r.Identity)
		out.KeyValue("Path", r.Path, 8)
		source := string(r.Source)
		if r.Origin != "" {
			source += " (" + string(r.Origin) + ")"
		}
		out.KeyValue("Source", source, 8)
		out.KeyValue("Platform", r.Platform, 8)
		if r.Layout != "" {
			out.KeyValue("Layout", r.Layout, 8)
		}
	}
	return nil
}
