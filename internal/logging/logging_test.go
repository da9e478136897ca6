package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if dir == "" {
		t.Fatal("DefaultLogDir returned empty string")
	}
	if !strings.Contains(dir, ".nativecore") || !strings.Contains(dir, "logs") {
		t.Errorf("DefaultLogDir should contain .nativecore/logs, got: %s", dir)
	}
}

func TestDefaultLogPath(t *testing.T) {
	if got := filepath.Base(DefaultLogPath()); got != "nativecore.log" {
		t.Errorf("DefaultLogPath should end with nativecore.log, got: %s", got)
	}
}

func TestDefaultAndDebugConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got: %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected rotation defaults: %d MB, %d files", cfg.MaxSizeMB, cfg.MaxFiles)
	}
	if !cfg.WriteToStderr {
		t.Error("expected WriteToStderr to be true")
	}
	if DebugConfig().Level != "debug" {
		t.Errorf("expected debug level, got: %s", DebugConfig().Level)
	}
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Debug("loading component", slog.String("component", "tbdex"))
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"component":"tbdex"`) {
		t.Errorf("expected JSON attrs in log, got: %s", data)
	}
}

func TestSetup_NoFile(t *testing.T) {
	logger, cleanup, err := Setup(Config{Level: "info"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn should be emitted: %s", out)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTraceSlog},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rot.log")
	w, err := NewRotatingWriter(path, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	chunk := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 4; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected %s.1 after rotation: %v", path, err)
	}
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Errorf("expected at most 2 backups")
	}
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = fmt.Fprintf(w, "goroutine %d line %d\n", n, j)
			}
		}(i)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 400 {
		t.Errorf("expected 400 lines, got %d", lines)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}
}
