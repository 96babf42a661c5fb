package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
		{"xml", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.in); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewConsoleLoggerFromConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerFromConfig(&buf, "warn", "logfmt", false, false)

	logger.Info("hidden")
	logger.Warn("shown", "file", "a.json")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file=a.json") {
		t.Errorf("expected logfmt warn line, got %q", out)
	}
	if !strings.Contains(out, "kanban") {
		t.Errorf("expected prefix in output, got %q", out)
	}
}

func TestNewConsoleLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultConsoleOptions()
	opts.Formatter = log.JSONFormatter
	opts.Level = log.DebugLevel
	logger := NewConsoleLogger(&buf, opts)

	logger.Debug("loaded", "tasks", 3)

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, `"tasks":3`) {
		t.Errorf("expected JSON line, got %q", out)
	}
}
