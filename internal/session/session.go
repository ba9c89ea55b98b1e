// Package session tracks the set of currently open wiki entries across
// invocations. The session is owned by the user's editing workflow; this
// tool only records which entries were opened so that bulk operations have
// something to enumerate.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one open entry in the session.
type Entry struct {
	Path     string    `json:"path"`
	Modified bool      `json:"modified"`
	OpenedAt time.Time `json:"opened_at"`
}

// Session is a JSON-file-backed record of open entries. It is loaded once
// at construction and rewritten after every mutation; a single interactive
// user is assumed, so no locking is done.
type Session struct {
	file    string
	entries []Entry
}

// Load reads the session file at path. A missing file yields an empty
// session.
func Load(path string) (*Session, error) {
	s := &Session{file: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", path, err)
	}
	return s, nil
}

// Entries returns a copy of the open entries.
func (s *Session) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Current returns the most recently opened entry path, or empty string.
func (s *Session) Current() string {
	var cur Entry
	for _, e := range s.entries {
		if e.OpenedAt.After(cur.OpenedAt) {
			cur = e
		}
	}
	return cur.Path
}

// Open records path as open. Re-opening an existing entry refreshes its
// timestamp and clears the modified flag.
func (s *Session) Open(path string) error {
	now := time.Now()
	for i := range s.entries {
		if s.entries[i].Path == path {
			s.entries[i].OpenedAt = now
			s.entries[i].Modified = false
			return s.save()
		}
	}
	s.entries = append(s.entries, Entry{Path: path, OpenedAt: now})
	return s.save()
}

// Close removes path from the session. Closing an unknown path is a no-op.
func (s *Session) Close(path string) error {
	for i := range s.entries {
		if s.entries[i].Path == path {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.save()
		}
	}
	return nil
}

// MarkModified flags an open entry as having unsaved changes.
func (s *Session) MarkModified(path string, modified bool) error {
	for i := range s.entries {
		if s.entries[i].Path == path {
			s.entries[i].Modified = modified
			return s.save()
		}
	}
	return fmt.Errorf("session: not open: %s", path)
}

// save rewrites the session file atomically.
func (s *Session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("session: write temp: %w", err)
	}
	if err := os.Rename(tmp, s.file); err != nil {
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}
