package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gausby/mg-org-wiki/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSync(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	_ = os.WriteFile(filepath.Join(dir, "a.org"), []byte("#+TITLE: a\n#+KEYWORDS: go\n\n* \nsee [[wiki:b.org]]\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "b.org"), []byte("#+TITLE: b\n"), 0o644)

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 2 {
		t.Fatalf("indexed = %d, want 2", len(checksums))
	}

	bl, _ := db.Backlinks("b.org")
	if len(bl) != 1 || bl[0] != "a.org" {
		t.Errorf("backlinks = %v", bl)
	}

	// Remove a file and sync again: the stale row goes away.
	_ = os.Remove(filepath.Join(dir, "b.org"))
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	checksums, _ = db.AllChecksums()
	if len(checksums) != 1 {
		t.Errorf("after removal indexed = %d, want 1", len(checksums))
	}
}

func TestWatchIndexesNewEntry(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	events := map[string]string{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, discardLogger(), func(kind, path string) {
			mu.Lock()
			events[path] = kind
			mu.Unlock()
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "fresh.org"), []byte("#+TITLE: fresh\n"), 0o644)

	deadline := time.After(3 * time.Second)
	for {
		cs, _ := db.GetChecksum("fresh.org")
		if cs != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher did not index the new entry in time")
		case <-time.After(50 * time.Millisecond):
		}
	}

	mu.Lock()
	kind := events["fresh.org"]
	mu.Unlock()
	if kind != "created" && kind != "updated" {
		t.Errorf("event kind = %q", kind)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
