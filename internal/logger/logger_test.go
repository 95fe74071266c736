package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"none":    LevelNone,
		"bogus":   LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")
	l, err := New(LevelDebug, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hello %s", "world")
	l.Debug("details")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[INFO] hello world") {
		t.Errorf("missing info line in output: %q", out)
	}
	if !strings.Contains(out, "[DEBUG] details") {
		t.Errorf("missing debug line in output: %q", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")
	l, err := New(LevelWarn, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("should not appear")
	l.Warn("should appear")
	l.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "should not appear") {
		t.Error("info line logged despite warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn line missing")
	}
}

func TestLevelNoneDisablesOutput(t *testing.T) {
	l, err := New(LevelNone, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Must not panic or write anywhere.
	l.Error("dropped")
}
