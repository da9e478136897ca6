package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.nativecore/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".nativecore", "logs")
	}
	return filepath.Join(home, ".nativecore", "logs")
}

// DefaultLogPath returns the default CLI log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "nativecore.log")
}
