package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/nativecore/configs"
	"github.com/Aman-CERP/nativecore/internal/component"
	"github.com/Aman-CERP/nativecore/internal/config"
	"github.com/Aman-CERP/nativecore/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage nativecore configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/nativecore/config.yaml)
  3. Project config (.nativecore.yaml)
  4. Project .env file
  5. Environment variables (NATIVECORE_*, <ID>_LIBRARY_OVERRIDE, <ID>_SDK_LOG_LEVEL)`,
		Example: `  # Create user config from template
  nativecore config init

  # Show effective configuration (merged from all sources)
  nativecore config show

  # Print user config file path
  nativecore config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create the user configuration file at ~/.config/nativecore/config.yaml
(or $XDG_CONFIG_HOME/nativecore/config.yaml), or with --project a
.nativecore.yaml in the current directory.`,
		Example: `  # Create user config
  nativecore config init

  # Create project config, overwriting an existing one
  nativecore config init --project --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, project)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Create .nativecore.yaml in the current directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or a single source
with --source.`,
		Example: `  # Show merged configuration
  nativecore config show

  # Show as JSON
  nativecore config show --json

  # Show only user config
  nativecore config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force, project bool) error {
	out := output.New(cmd.OutOrStdout())

	path := config.GetUserConfigPath()
	template := configs.UserConfigTemplate
	if project {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, config.ProjectConfigFile)
		template = configs.ProjectConfigTemplate
	}

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Status("💡", "Use --force to overwrite it with the template")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to set overrides or log levels")
	out.Status("", "  2. Run 'nativecore config show' to verify")
	out.Status("", "  3. Run 'nativecore doctor' to check the libraries")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}

	var (
		cfg        *config.Config
		sourceDesc string
		merged     bool
	)

	switch source {
	case "merged":
		cfg, err = config.Load(root)
		if err != nil {
			return err
		}
		sourceDesc = "merged (defaults + user + project + .env + env)"
		merged = true

	case "user":
		path := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'nativecore config init' to create one")
			return nil
		}
		if cfg, err = readConfigFile(path); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("user (%s)", path)

	case "project":
		path := filepath.Join(root, config.ProjectConfigFile)
		if _, err := os.Stat(path); err != nil {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'nativecore config init --project' to create one")
			return nil
		}
		if cfg, err = readConfigFile(path); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("project (%s)", path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if merged {
		return showEffective(out, cfg)
	}
	return nil
}

// showEffective prints what each component would use once the environment
// is taken into account.
func showEffective(out *output.Writer, cfg *config.Config) error {
	catalog, err := component.Load(cfg)
	if err != nil {
		return err
	}
	out.Header("Effective per component")
	for _, id := range catalog.Identities() {
		override := "none"
		if path, origin, ok := cfg.Override(id); ok {
			override = fmt.Sprintf("%s (%s)", path, origin)
		}
		level := cfg.NativeLogLevel(id)
		if level == "" {
			level = "component default"
		}
		out.Dim(id)
		out.KeyValue("Override", override, 9)
		out.KeyValue("Log level", level, 9)
	}
	return nil
}

func readConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg := config.NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
