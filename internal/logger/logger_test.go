package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure("info", "json", &buf)

	Debug("hidden")
	Error("Fetch failed", errors.New("boom"), "url", "https://example.com")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if record["msg"] != "Fetch failed" || record["error"] != "boom" || record["url"] != "https://example.com" {
		t.Errorf("Unexpected record: %v", record)
	}
}

func TestConfigureText(t *testing.T) {
	var buf bytes.Buffer
	Configure("debug", "text", &buf)

	Debug("Cache hit", "url", "https://example.com/a")

	out := buf.String()
	if !strings.Contains(out, "msg=\"Cache hit\"") || !strings.Contains(out, "level=DEBUG") {
		t.Errorf("Unexpected text output: %q", out)
	}
}
