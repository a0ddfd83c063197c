// ABOUTME: Tests for logger construction
// ABOUTME: Verifies JSON fields, level filtering and stack output
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSONIncludesServiceAndStack(t *testing.T) {
	var buf bytes.Buffer
	log := New("focusflow-test", Options{Level: "debug", Format: "json", Out: &buf})

	log.Error().Stack().Err(errors.New("boom")).Msg("something failed")

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("invalid json log: %v\n%s", err, buf.String())
	}
	if payload["service"] != "focusflow-test" {
		t.Errorf("service = %v, want focusflow-test", payload["service"])
	}
	if payload["error"] != "boom" {
		t.Errorf("error = %v, want boom", payload["error"])
	}
	if _, ok := payload["stack"]; !ok {
		t.Error("expected stack field on error event")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New("focusflow-test", Options{Level: "warn", Format: "json", Out: &buf})

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info event written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn event missing: %s", out)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("focusflow-test", Options{Level: "info", Out: &buf})
	log.Info().Str("table", "tasks").Msg("saved")

	out := buf.String()
	if !strings.Contains(out, "saved") || !strings.Contains(out, "table=tasks") {
		t.Errorf("unexpected console output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console format produced JSON: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"chatty", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
