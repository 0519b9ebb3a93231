package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "rcmconv.log")

	// 1MB is the smallest size lumberjack accepts.
	err := InitWithOptions(Options{
		Level: "debug",
		File:  Rotation{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1},
	})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(Nop)

	payload := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Info("converted", zap.Int("object", i), zap.String("payload", payload))
	}
	Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "rcmconv.log" {
			continue
		}
		if strings.HasPrefix(name, "rcmconv-20") && strings.HasSuffix(name, ".log") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files found in %v", files)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"", []string{"INFO"}, []string{"DEBUG"}},
		{"DEBUG", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "levels.log")

			if err := InitWithOptions(Options{Level: tt.level, File: DefaultRotation(logFile)}); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}
			t.Cleanup(Nop)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}

			for _, exp := range tt.expected {
				if !strings.Contains(string(content), exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(string(content), exc) {
					t.Errorf("unexpected %s in log output", exc)
				}
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("wrote file", zap.String("output", "box.rcm"))
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "wrote file") || !strings.Contains(out, "box.rcm") {
		t.Errorf("console output missing message: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked at info level: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("New accepted an unknown level")
	}
	if lvl, _ := ParseLevel("Warn"); lvl != zapcore.WarnLevel {
		t.Errorf("ParseLevel(Warn) = %v", lvl)
	}
}

func TestNop(t *testing.T) {
	Nop()
	// Must not panic.
	Info("dropped")
	Sync()

	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Nop logger is enabled")
	}
}

func TestDefaultRotation(t *testing.T) {
	cfg := DefaultRotation("/tmp/rcmconv.log")

	if cfg.Path != "/tmp/rcmconv.log" || cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 14 || !cfg.Compress {
		t.Errorf("DefaultRotation = %+v", cfg)
	}
}
