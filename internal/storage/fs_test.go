package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempWiki(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempWiki(t)
	content := []byte("#+TITLE: hello\n#+KEYWORDS: test\n\n* \n")
	if err := s.Write("hello.org", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("hello.org")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestListFlatNamespace(t *testing.T) {
	s := tempWiki(t)
	_ = s.Write("a.org", []byte("a"))
	_ = s.Write("b.org", []byte("b"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not org"), 0o644)

	// Nested .org files must be invisible.
	sub := filepath.Join(s.Root(), "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(sub, "nested.org"), []byte("hidden"), 0o644)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestListMissingRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	items, err := s.List()
	if err != nil {
		t.Fatalf("List on missing root: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWiki(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.org",
		"/etc/shadow",
		"sub/nested.org",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicOverwrite(t *testing.T) {
	s := tempWiki(t)
	_ = s.Write("atomic.org", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.org", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("atomic.org")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("content = %q, want %q", got, updated)
	}

	// No temp files left behind.
	dirents, _ := os.ReadDir(s.Root())
	for _, d := range dirents {
		if d.Name() != "atomic.org" {
			t.Errorf("unexpected leftover file: %s", d.Name())
		}
	}
}
