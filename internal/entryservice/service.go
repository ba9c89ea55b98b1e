// Package entryservice coordinates storage and index operations for the
// serve-mode surfaces (HTTP API and MCP).
package entryservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gausby/mg-org-wiki/internal/apperr"
	"github.com/gausby/mg-org-wiki/internal/checksum"
	"github.com/gausby/mg-org-wiki/internal/index"
	"github.com/gausby/mg-org-wiki/internal/parser"
	"github.com/gausby/mg-org-wiki/internal/storage"
	"github.com/gausby/mg-org-wiki/internal/wiki"
)

// EntryDetail is the full representation of an entry.
type EntryDetail struct {
	Path      string    `json:"path"`
	Topic     string    `json:"topic"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Checksum  string    `json:"checksum"`
	Keywords  []string  `json:"keywords"`
	Backlinks []string  `json:"backlinks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryListItem is a lightweight item in a list response.
type EntryListItem struct {
	Path      string    `json:"path"`
	Topic     string    `json:"topic"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Keywords  []string  `json:"keywords"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new entry service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// entryName maps a topic to its file name, rejecting blank topics and
// anything that would escape the wiki directory.
func entryName(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", apperr.ErrInvalidTopic
	}
	name := wiki.Filename(topic)
	if filepath.IsAbs(name) || filepath.Clean(name) != filepath.Base(filepath.Clean(name)) {
		return "", apperr.ErrInvalidTopic
	}
	return name, nil
}

// GetEntry reads an entry from storage, parses it, and enriches it with
// backlinks.
func (s *Service) GetEntry(_ context.Context, topic string) (*EntryDetail, error) {
	name, err := entryName(topic)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(name, data)
}

// CreateEntry writes a new entry built from the standard header template
// and indexes it.
func (s *Service) CreateEntry(_ context.Context, topic, keywords, body string) (*EntryDetail, error) {
	name, err := entryName(topic)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(name); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	content := []byte(wiki.RenderWithBody(strings.TrimSuffix(name, storage.Extension), keywords, body))
	if err := s.store.Write(name, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(name, content); err != nil {
		return nil, err
	}
	return s.buildDetail(name, content)
}

// UpdateEntry writes updated content with optimistic concurrency: a
// non-empty ifMatch must equal the current content checksum.
func (s *Service) UpdateEntry(_ context.Context, topic string, content []byte, ifMatch string) (*EntryDetail, error) {
	name, err := entryName(topic)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(name, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(name, content); err != nil {
		return nil, err
	}
	return s.buildDetail(name, content)
}

// ListEntries returns paginated entries with optional keyword filter.
func (s *Service) ListEntries(_ context.Context, limit, offset int, keyword, sort string) ([]EntryListItem, int, error) {
	rows, total, err := s.db.ListEntries(limit, offset, keyword, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]EntryListItem, len(rows))
	for i, r := range rows {
		items[i] = EntryListItem{
			Path:      r.Path,
			Topic:     r.Topic,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Keywords:  nonNilSlice(r.Keywords),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// ListKeywords returns every keyword in use with entry counts.
func (s *Service) ListKeywords(_ context.Context) ([]index.KeywordCount, error) {
	return s.db.ListKeywords()
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Backlinks returns every entry path that links to the given topic.
func (s *Service) Backlinks(_ context.Context, topic string) ([]string, error) {
	return s.db.Backlinks(wiki.Filename(strings.TrimSpace(topic)))
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher-driven callers can reuse it.
func (s *Service) IndexFile(name string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return s.db.UpsertEntry(index.EntryRow{
		Path:      name,
		Topic:     strings.TrimSuffix(name, storage.Extension),
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Keywords:  nonNilSlice(res.Keywords),
		UpdatedAt: time.Now(),
	}, res.Body, res.Links)
}

// buildDetail constructs an EntryDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(name string, data []byte) (*EntryDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(name)
	if err != nil {
		return nil, err
	}
	return &EntryDetail{
		Path:      name,
		Topic:     strings.TrimSuffix(name, storage.Extension),
		Title:     res.Title,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Keywords:  nonNilSlice(res.Keywords),
		Backlinks: nonNilSlice(bl),
		UpdatedAt: time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
