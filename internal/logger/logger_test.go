package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"WARN", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for input %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("expected %v, got %v for input %q", tt.expected, got, tt.input)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("debug message should not be logged at WARN level")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should not be logged at WARN level")
	}

	l.Warn("warn message")
	l.Error("error message")

	output = buf.String()
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should be logged at WARN level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("error message should be logged at WARN level")
	}
}

func TestLogger_LogFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.Info("request %s %s", "POST", "/ProductTeam")

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("log output should contain level prefix, got %q", output)
	}
	if !strings.Contains(output, "request POST /ProductTeam") {
		t.Errorf("log output should contain formatted message, got %q", output)
	}
}

func TestLogger_EnvVarLogLevel(t *testing.T) {
	t.Setenv("CPMFLOW_LOG_LEVEL", "debug")

	l := New()
	if l.level != LevelDebug {
		t.Errorf("expected debug level from env var, got %v", l.level)
	}
}

func TestLogger_EnvVarLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpmflow.log")
	t.Setenv("CPMFLOW_LOG_FILE", path)

	l := New()
	defer l.Close()

	l.Info("test message")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "test message") {
		t.Error("log file should contain the test message")
	}
}

func TestLogger_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configured.log")

	l := New()
	defer l.Close()

	if err := l.Configure("error", path); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	l.Warn("dropped")
	l.Error("kept %d", 1)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(content), "dropped") {
		t.Error("warn should be filtered at ERROR level")
	}
	if !strings.Contains(string(content), "kept 1") {
		t.Error("error should be written to configured file")
	}

	if err := l.Configure("loud", ""); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestLogger_Close(t *testing.T) {
	t.Setenv("CPMFLOW_LOG_FILE", filepath.Join(t.TempDir(), "close.log"))

	l := New()
	if err := l.Close(); err != nil {
		t.Errorf("unexpected error closing logger: %v", err)
	}
	// Logging after close must not panic.
	l.Error("after close")
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	t.Cleanup(func() {
		Default.SetOutput(&bytes.Buffer{})
		Default.SetLevel(LevelInfo)
	})

	Debug("debug %s", "test")
	Info("info %s", "test")
	Warn("warn %s", "test")
	Error("error %s", "test")

	output := buf.String()
	for _, want := range []string{"debug test", "info test", "warn test", "error test"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}
