package embedded

import (
	"bytes"
	"testing"

	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
)

func TestIndexKeyNewestFirst(t *testing.T) {
	g := id.NewGenerator()
	older := g.Next()
	newer := g.Next()

	a := indexKey("mail", engine.StateWaiting, older)
	b := indexKey("mail", engine.StateWaiting, newer)
	// Inverted id bytes: the newer job must sort before the older one.
	if bytes.Compare(b, a) >= 0 {
		t.Fatalf("newer key %x does not sort before older key %x", b, a)
	}
}

func TestIndexKeyUnderStatePrefix(t *testing.T) {
	g := id.NewGenerator()
	key := indexKey("mail", engine.StateFailed, g.Next())
	if !bytes.HasPrefix(key, indexPrefix("mail", engine.StateFailed)) {
		t.Fatalf("key %q outside its state prefix", key)
	}
	if bytes.HasPrefix(key, indexPrefix("mail", engine.StateWaiting)) {
		t.Fatal("key matches a foreign state prefix")
	}
}

func TestJobKeyLayout(t *testing.T) {
	if got := string(jobKey("mail", "abc")); got != "q/mail/job/abc" {
		t.Fatalf("job key = %q", got)
	}
	if got := string(registryKey("mail")); got != "queues/mail" {
		t.Fatalf("registry key = %q", got)
	}
}
