package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormatterFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Info("hello", Str("a", "b"), Int("n", 3))
	line := buf.String()
	if !strings.Contains(line, "INFO hello") {
		t.Fatalf("missing level/message: %q", line)
	}
	if !strings.Contains(line, "a=b") || !strings.Contains(line, "n=3") {
		t.Fatalf("missing fields: %q", line)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&JSONFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Warn("oops", Err(errUnknownFormat("x")))
	var obj map[string]any
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if obj["level"] != "WARN" || obj["msg"] != "oops" {
		t.Fatalf("unexpected record: %v", obj)
	}
	if obj["error"] != "unknown log format x" {
		t.Fatalf("error field: %v", obj["error"])
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(ErrorLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be gated: %q", buf.String())
	}
	logger.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("error should pass: %q", buf.String())
	}
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	child := logger.WithComponent("fanout")
	child.Info("tick")
	if !strings.Contains(buf.String(), "component=fanout") {
		t.Fatalf("component field missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("debug"); err != nil || l != DebugLevel {
		t.Fatalf("parse debug: %v %v", l, err)
	}
	if _, err := ParseLevel("nope"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(&Config{Level: "info", Format: "json"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
