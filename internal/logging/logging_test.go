package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("hello", "k", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" || rec["app"] != "hero-service" || rec["level"] != "DEBUG" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	log.Warn("kept")
	if !bytes.Contains(buf.Bytes(), []byte("kept")) {
		t.Fatalf("warn not written: %q", buf.String())
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, "chatty", "json"); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatal("expected format error")
	}
}

func TestParseLevel_EmptyIsInfo(t *testing.T) {
	t.Parallel()

	lvl, err := ParseLevel("")
	if err != nil || lvl != slog.LevelInfo {
		t.Fatalf("ParseLevel(\"\")=%v, %v", lvl, err)
	}
}
