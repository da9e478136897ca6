// Package config assembles nativecore's configuration from defaults, YAML
// files, a project .env file and the process environment. The result is an
// explicit Config value; nothing below the CLI reads the environment itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
	"github.com/Aman-CERP/nativecore/internal/logging"
	"github.com/Aman-CERP/nativecore/internal/platform"
)

const (
	// ProjectConfigFile is the per-project configuration file name.
	ProjectConfigFile = ".nativecore.yaml"
	// DotEnvFile is read from the project directory when present.
	DotEnvFile = ".env"

	// OverrideEnvSuffix marks a per-component library override variable,
	// e.g. TBDEX_LIBRARY_OVERRIDE.
	OverrideEnvSuffix = "_LIBRARY_OVERRIDE"
	// LogLevelEnvSuffix marks a per-component native log level variable,
	// e.g. TBDEX_SDK_LOG_LEVEL.
	LogLevelEnvSuffix = "_SDK_LOG_LEVEL"

	envResourceDir    = "NATIVECORE_RESOURCE_DIR"
	envLayout         = "NATIVECORE_LIBRARY_LAYOUT"
	envNativeLogLevel = "NATIVECORE_NATIVE_LOG_LEVEL"
	envLogLevel       = "NATIVECORE_LOG_LEVEL"
	envLogFile        = "NATIVECORE_LOG_FILE"
)

// Config represents the complete nativecore configuration.
type Config struct {
	Version    int               `yaml:"version" json:"version"`
	Library    LibraryConfig     `yaml:"library" json:"library"`
	Native     NativeConfig      `yaml:"native" json:"native"`
	Logging    LoggingConfig     `yaml:"logging" json:"logging"`
	Components []ComponentConfig `yaml:"components,omitempty" json:"components,omitempty"`

	// env holds the values taken from .env and the process environment,
	// keyed by variable name. Process values win over .env values.
	env map[string]envValue
}

// LibraryConfig controls where shared libraries are found.
type LibraryConfig struct {
	// ResourceDir is the directory searched for conventional paths.
	// Empty means DefaultResourceDir().
	ResourceDir string `yaml:"resource_dir,omitempty" json:"resource_dir,omitempty"`
	// Layout is flat, platform or multiarch.
	Layout string `yaml:"layout" json:"layout"`
	// Overrides maps a component identity to an explicit library path.
	Overrides map[string]string `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// NativeConfig controls the log level handed to native components.
type NativeConfig struct {
	// LogLevel applies to every component unless Components overrides it.
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	// Components maps an identity to its own level.
	Components map[string]string `yaml:"components,omitempty" json:"components,omitempty"`
}

// LoggingConfig configures nativecore's own structured log.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file,omitempty" json:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// ComponentConfig declares a component beyond the built-in catalog.
type ComponentConfig struct {
	ID              string   `yaml:"id" json:"id"`
	LibName         string   `yaml:"lib_name,omitempty" json:"lib_name,omitempty"`
	Namespace       string   `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	ContractVersion int      `yaml:"contract_version,omitempty" json:"contract_version,omitempty"`
	Symbols         []string `yaml:"symbols,omitempty" json:"symbols,omitempty"`
	LogLevelEnv     string   `yaml:"log_level_env,omitempty" json:"log_level_env,omitempty"`
}

// Origin names where an override or level came from.
type Origin string

const (
	OriginNone   Origin = ""
	OriginConfig Origin = "config"
	OriginDotEnv Origin = "dotenv"
	OriginEnv    Origin = "env"
)

type envValue struct {
	value  string
	origin Origin
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Library: LibraryConfig{
			Layout:    string(platform.LayoutFlat),
			Overrides: map[string]string{},
		},
		Native: NativeConfig{
			Components: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		env: map[string]envValue{},
	}
}

// DefaultResourceDir is the "lib" directory next to the running executable,
// or "lib" relative to the working directory if the executable is unknown.
func DefaultResourceDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "lib"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "lib")
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/nativecore/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/nativecore/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nativecore", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "nativecore", "config.yaml")
	}
	return filepath.Join(home, ".config", "nativecore", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/nativecore/config.yaml)
//  3. Project config (.nativecore.yaml in dir)
//  4. Project .env file
//  5. Process environment
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	projectPath := filepath.Join(dir, ProjectConfigFile)
	if fileExists(projectPath) {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		return nil, err
	}
	cfg.loadProcessEnv(os.Environ())
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nerrors.New(nerrors.ErrCodeConfigPermission,
				fmt.Sprintf("cannot read config file %s", path), err)
		}
		return nerrors.New(nerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Maps merge per key and
// components replace earlier declarations with the same ID.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Library.ResourceDir != "" {
		c.Library.ResourceDir = other.Library.ResourceDir
	}
	if other.Library.Layout != "" {
		c.Library.Layout = other.Library.Layout
	}
	if c.Library.Overrides == nil {
		c.Library.Overrides = map[string]string{}
	}
	for id, path := range other.Library.Overrides {
		c.Library.Overrides[id] = path
	}

	if other.Native.LogLevel != "" {
		c.Native.LogLevel = other.Native.LogLevel
	}
	if c.Native.Components == nil {
		c.Native.Components = map[string]string{}
	}
	for id, level := range other.Native.Components {
		c.Native.Components[id] = level
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	for _, comp := range other.Components {
		replaced := false
		for i := range c.Components {
			if c.Components[i].ID == comp.ID {
				c.Components[i] = comp
				replaced = true
				break
			}
		}
		if !replaced {
			c.Components = append(c.Components, comp)
		}
	}
}

// loadDotEnv reads a .env file if it exists. Missing files are fine.
func (c *Config) loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to parse %s", path), err).
			WithDetail("path", path)
	}
	c.setEnv(values, OriginDotEnv)
	return nil
}

// loadProcessEnv records KEY=VALUE pairs as produced by os.Environ.
func (c *Config) loadProcessEnv(environ []string) {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		values[k] = v
	}
	c.setEnv(values, OriginEnv)
}

func (c *Config) setEnv(values map[string]string, origin Origin) {
	if c.env == nil {
		c.env = map[string]envValue{}
	}
	for k, v := range values {
		c.env[k] = envValue{value: v, origin: origin}
	}
}

func (c *Config) getEnv(key string) (envValue, bool) {
	v, ok := c.env[key]
	if !ok || v.value == "" {
		return envValue{}, false
	}
	return v, true
}

// applyEnvOverrides applies NATIVECORE_* variables.
func (c *Config) applyEnvOverrides() {
	if v, ok := c.getEnv(envResourceDir); ok {
		c.Library.ResourceDir = v.value
	}
	if v, ok := c.getEnv(envLayout); ok {
		c.Library.Layout = v.value
	}
	if v, ok := c.getEnv(envNativeLogLevel); ok {
		c.Native.LogLevel = v.value
	}
	if v, ok := c.getEnv(envLogLevel); ok {
		c.Logging.Level = v.value
	}
	if v, ok := c.getEnv(envLogFile); ok {
		c.Logging.File = v.value
	}
}

// EnvKey converts a component identity into its environment variable stem:
// upper-cased, with every character outside [A-Z0-9] replaced by '_'.
func EnvKey(identity string) string {
	var b strings.Builder
	b.Grow(len(identity))
	for _, r := range strings.ToUpper(identity) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// OverrideEnvVar is the variable that overrides identity's library path.
func OverrideEnvVar(identity string) string {
	return EnvKey(identity) + OverrideEnvSuffix
}

// LogLevelEnvVar is the variable that sets identity's native log level.
func LogLevelEnvVar(identity string) string {
	return EnvKey(identity) + LogLevelEnvSuffix
}

// Override returns the library path override for identity and where it came
// from. The environment (.env or process) wins over config files. The value is
// returned as configured, without validation.
func (c *Config) Override(identity string) (string, Origin, bool) {
	if v, ok := c.getEnv(OverrideEnvVar(identity)); ok {
		return v.value, v.origin, true
	}
	if path := c.Library.Overrides[identity]; path != "" {
		return path, OriginConfig, true
	}
	return "", OriginNone, false
}

// SetOverride records an override as if it came from a config file.
// Used by the CLI --override flag.
func (c *Config) SetOverride(identity, path string) {
	if c.Library.Overrides == nil {
		c.Library.Overrides = map[string]string{}
	}
	c.Library.Overrides[identity] = path
	// An explicit flag beats the environment.
	delete(c.env, OverrideEnvVar(identity))
}

// OverrideEnvIdentities lists the identity stems that have a
// *_LIBRARY_OVERRIDE variable set, sorted. Stems are in EnvKey form.
func (c *Config) OverrideEnvIdentities() []string {
	var keys []string
	for k, v := range c.env {
		if v.value == "" || !strings.HasSuffix(k, OverrideEnvSuffix) {
			continue
		}
		if stem := strings.TrimSuffix(k, OverrideEnvSuffix); stem != "" {
			keys = append(keys, stem)
		}
	}
	sort.Strings(keys)
	return keys
}

// NativeLogLevel returns the native log level configured for identity:
// <ID>_SDK_LOG_LEVEL, then native.components.<id>, then native.log_level.
// An empty result means the level is left to the native component.
func (c *Config) NativeLogLevel(identity string) string {
	if v, ok := c.getEnv(LogLevelEnvVar(identity)); ok {
		return v.value
	}
	if level := c.Native.Components[identity]; level != "" {
		return level
	}
	return c.Native.LogLevel
}

// ResourceDir returns the configured resource directory or the default.
func (c *Config) ResourceDir() string {
	if c.Library.ResourceDir != "" {
		return c.Library.ResourceDir
	}
	return DefaultResourceDir()
}

// LibraryLayout returns the parsed layout. Validate guarantees it parses.
func (c *Config) LibraryLayout() platform.Layout {
	l, err := platform.ParseLayout(c.Library.Layout)
	if err != nil {
		return platform.LayoutFlat
	}
	return l
}

// Validate validates the configuration and returns a ConfigurationError if
// it is invalid.
func (c *Config) Validate() error {
	if _, err := platform.ParseLayout(c.Library.Layout); err != nil {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			"library.layout is invalid", err).
			WithSuggestion("Use one of: flat, platform, multiarch")
	}

	if c.Native.LogLevel != "" {
		if _, err := logging.ParseLevel(c.Native.LogLevel); err != nil {
			return err
		}
	}
	for id, level := range c.Native.Components {
		if _, err := logging.ParseLevel(level); err != nil {
			return nerrors.ConfigurationError(nerrors.ErrCodeLogLevelInvalid,
				fmt.Sprintf("native.components.%s has an invalid log level", id), err)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return nerrors.ConfigurationError(nerrors.ErrCodeLogLevelInvalid, "logging.level is invalid", err)
	}
	if c.Logging.MaxSizeMB < 0 {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			"logging.max_size_mb must be non-negative, got "+strconv.Itoa(c.Logging.MaxSizeMB), nil)
	}
	if c.Logging.MaxFiles < 0 {
		return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
			"logging.max_files must be non-negative, got "+strconv.Itoa(c.Logging.MaxFiles), nil)
	}

	seen := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		if strings.TrimSpace(comp.ID) == "" {
			return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("components[%d].id must not be empty", i), nil)
		}
		if seen[comp.ID] {
			return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("component %q is declared twice", comp.ID), nil)
		}
		seen[comp.ID] = true
		if comp.ContractVersion < 0 {
			return nerrors.ConfigurationError(nerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("component %q has a negative contract_version", comp.ID), nil)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// .nativecore.yaml file. If neither is found, startDir itself is returned.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if dirExists(filepath.Join(current, ".git")) ||
			fileExists(filepath.Join(current, ProjectConfigFile)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
