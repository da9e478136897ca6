package logging

import (
	"fmt"
	"log/slog"
	"strings"

	nerrors "github.com/Aman-CERP/nativecore/internal/errors"
)

// Level is an ordered diagnostic severity: trace < debug < info < warn < error.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// LevelTraceSlog sits one step below slog.LevelDebug.
const LevelTraceSlog = slog.LevelDebug - 4

var levelNames = [...]string{"trace", "debug", "info", "warn", "error"}

// ParseLevel parses a level name, case-insensitively. "warning" is accepted
// for warn. Anything else is a configuration error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, nerrors.ConfigurationError(
		nerrors.ErrCodeLogLevelInvalid,
		fmt.Sprintf("unknown log level %q", s),
		nil,
	).WithSuggestion("Use one of: " + strings.Join(levelNames[:], ", "))
}

// String returns the lower-case level name.
func (l Level) String() string {
	if l < LevelTrace || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// NativeValue is the spelling native components expect in their
// log-level environment variable (e.g. TBDEX_SDK_LOG_LEVEL=DEBUG).
func (l Level) NativeValue() string {
	return strings.ToUpper(l.String())
}

// Slog maps the level onto slog's scale.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelTrace:
		return LevelTraceSlog
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
