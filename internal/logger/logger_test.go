package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Config{Level: "debug", Output: &buf}), "pagerank")

	log.Debug().Int("iterations", 7).Msg("converged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "linkrank" || entry["component"] != "pagerank" {
		t.Fatalf("missing context fields: %v", entry)
	}
	if entry["iterations"] != float64(7) || entry["message"] != "converged" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	for _, level := range []string{"", "trace", "debug", "INFO", "warning", "error", "off"} {
		if _, err := ParseLevel(level); err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", level, err)
		}
	}
}

func TestNewEnablesTrace(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "trace", Output: &buf})

	log.Trace().Int("iteration", 1).Msg("iteration")
	if buf.Len() == 0 {
		t.Fatalf("expected trace events to be written at trace level")
	}
}
