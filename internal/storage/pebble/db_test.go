package pebblestore

import (
	"bytes"
	"errors"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCRUD(t *testing.T) {
	db := newTestDB(t)

	if err := db.Set([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q want v1", got)
	}

	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("k1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestBatchCommitIsAtomic(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	_ = b.Close()

	for _, k := range []string{"a", "b"} {
		if _, err := db.Get([]byte(k)); err != nil {
			t.Fatalf("get %q: %v", k, err)
		}
	}
}

func TestPrefixIterStaysInBounds(t *testing.T) {
	db := newTestDB(t)
	keys := []string{"q/mail/1", "q/mail/2", "q/video/1", "r/other"}
	for _, k := range keys {
		if err := db.Set([]byte(k), []byte("x")); err != nil {
			t.Fatalf("set %q: %v", k, err)
		}
	}

	it, err := db.PrefixIter([]byte("q/mail/"))
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	defer it.Close()

	var seen []string
	for it.First(); it.Valid(); it.Next() {
		seen = append(seen, string(it.Key()))
	}
	if len(seen) != 2 || seen[0] != "q/mail/1" || seen[1] != "q/mail/2" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	if got := prefixUpperBound([]byte("abc")); !bytes.Equal(got, []byte("abd")) {
		t.Fatalf("got %q", got)
	}
	if got := prefixUpperBound([]byte{0x61, 0xff}); !bytes.Equal(got, []byte{0x62}) {
		t.Fatalf("got %v", got)
	}
	if got := prefixUpperBound([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
