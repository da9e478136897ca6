package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means no file logging.
	FilePath string
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int
	// WriteToStderr whether to also write to stderr (default: true).
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for debug mode.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup initializes logging and returns the logger and a cleanup function.
// With an empty FilePath only stderr is used.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	var (
		output  io.Writer = os.Stderr
		cleanup           = func() {}
	)

	if cfg.FilePath != "" {
		writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		output = writer
		if cfg.WriteToStderr {
			output = io.MultiWriter(writer, os.Stderr)
		}
		cleanup = func() {
			_ = writer.Sync()
			_ = writer.Close()
		}
	}

	return New(output, cfg.Level), cleanup, nil
}

// New builds a JSON logger writing to w at the given level.
// Unknown levels fall back to info; the CLI validates levels earlier.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: LevelFromString(level),
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used as the default
// for library components that were not handed a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromString converts a level name to slog.Level, defaulting to info.
func LevelFromString(level string) slog.Level {
	l, err := ParseLevel(level)
	if err != nil {
		return slog.LevelInfo
	}
	return l.Slog()
}
