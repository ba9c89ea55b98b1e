package session

import (
	"path/filepath"
	"testing"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoadMissingFile(t *testing.T) {
	s := testSession(t)
	if len(s.Entries()) != 0 {
		t.Errorf("expected empty session, got %v", s.Entries())
	}
}

func TestOpenCloseRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.json")
	s, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Open("/wiki/a.org"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Open("/wiki/b.org"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Reload from disk.
	s2, err := Load(file)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(s2.Entries()) != 2 {
		t.Fatalf("entries = %d, want 2", len(s2.Entries()))
	}
	if s2.Current() != "/wiki/b.org" {
		t.Errorf("current = %q, want /wiki/b.org", s2.Current())
	}

	if err := s2.Close("/wiki/b.org"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s2.Current() != "/wiki/a.org" {
		t.Errorf("current after close = %q", s2.Current())
	}
}

func TestCloseUnknownPathIsNoop(t *testing.T) {
	s := testSession(t)
	if err := s.Close("/wiki/ghost.org"); err != nil {
		t.Errorf("Close unknown: %v", err)
	}
}

func TestReopenClearsModified(t *testing.T) {
	s := testSession(t)
	_ = s.Open("/wiki/a.org")
	if err := s.MarkModified("/wiki/a.org", true); err != nil {
		t.Fatalf("MarkModified: %v", err)
	}
	if !s.Entries()[0].Modified {
		t.Fatal("expected modified flag set")
	}
	_ = s.Open("/wiki/a.org")
	if s.Entries()[0].Modified {
		t.Error("reopen should clear modified flag")
	}
}

func TestMarkModifiedUnknownPath(t *testing.T) {
	s := testSession(t)
	if err := s.MarkModified("/wiki/ghost.org", true); err == nil {
		t.Error("expected error for unknown path")
	}
}
