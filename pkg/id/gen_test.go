package id

import (
	"bytes"
	"testing"
	"time"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := NewGenerator()
	NowMs = func() int64 { return 1000 }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	b := g.Next()
	if bytes.Compare(a.Bytes(), b.Bytes()) >= 0 {
		t.Fatalf("expected %s < %s", a, b)
	}
}

func TestGeneratorClockRegression(t *testing.T) {
	g := NewGenerator()
	ms := int64(1000)
	NowMs = func() int64 { return ms }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	ms = 900
	b := g.Next()
	if bytes.Compare(a.Bytes(), b.Bytes()) >= 0 {
		t.Fatal("id went backwards with the clock")
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	a := g.Next()
	parsed, ok := Parse(a.String())
	if !ok {
		t.Fatalf("parse %q failed", a.String())
	}
	if parsed != a {
		t.Fatalf("parsed %s, want %s", parsed, a)
	}

	if _, ok := Parse("zz"); ok {
		t.Fatal("parsed malformed input")
	}
	if _, ok := Parse("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"); ok {
		t.Fatal("parsed non-hex input")
	}
}
