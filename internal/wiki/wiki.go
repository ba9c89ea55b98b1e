// Package wiki implements the note store manager: topic-to-file resolution,
// templated entry creation, the open-entry session operations, and the two
// grep-backed search helpers.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/gausby/mg-org-wiki/internal/apperr"
	"github.com/gausby/mg-org-wiki/internal/search"
	"github.com/gausby/mg-org-wiki/internal/session"
	"github.com/gausby/mg-org-wiki/internal/storage"
)

// ModeSuffix is appended to an editing-mode name to form its canonical
// topic, one entry per mode.
const ModeSuffix = " (major mode)"

// KeywordPattern matches entry header keyword lines. FindKeyword always
// issues exactly this pattern.
const KeywordPattern = `^#\+KEYWORDS: `

// Opener opens a file in the user's editor and blocks until done.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Store is the note store manager. All operations resolve against a single
// canonical wiki directory; collaborators (prompting, editor, search,
// session) are injected so the store can be driven by scripted fakes in
// tests.
type Store struct {
	dir      string // canonical absolute path, symlinks resolved
	files    storage.Provider
	sess     *session.Session
	prompter Prompter
	opener   Opener
	searcher search.Searcher
	logger   *slog.Logger
}

// New creates a Store over the given wiki directory provider.
func New(files storage.Provider, sess *session.Session, prompter Prompter, opener Opener, searcher search.Searcher, logger *slog.Logger) (*Store, error) {
	dir, err := filepath.EvalSymlinks(files.Root())
	if err != nil {
		return nil, fmt.Errorf("wiki: resolve dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:      dir,
		files:    files,
		sess:     sess,
		prompter: prompter,
		opener:   opener,
		searcher: searcher,
		logger:   logger,
	}, nil
}

// Dir returns the canonical wiki directory.
func (s *Store) Dir() string {
	return s.dir
}

// ResolvePath maps a topic to its absolute entry path without touching the
// file system. A blank topic yields an empty path and no error; a topic
// escaping the wiki directory yields ErrInvalidTopic.
func (s *Store) ResolvePath(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", nil
	}
	name := Filename(topic)
	if filepath.IsAbs(name) || filepath.Clean(name) != filepath.Base(filepath.Clean(name)) {
		return "", fmt.Errorf("wiki: %q: %w", topic, apperr.ErrInvalidTopic)
	}
	return filepath.Join(s.dir, name), nil
}

// Visit opens the entry for topic, creating it from the header template
// first when absent. Blank topics are a silent no-op. Creation prompts for
// the keyword field; cancelling the prompt aborts before any file I/O.
func (s *Store) Visit(ctx context.Context, topic string) error {
	path, err := s.ResolvePath(topic)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	name := filepath.Base(path)

	if _, err := s.files.Read(name); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		keywords, perr := s.prompter.Input(ctx, "Keywords: ")
		if perr != nil {
			return fmt.Errorf("wiki: keyword prompt: %w", perr)
		}
		content := Render(strings.TrimSuffix(name, storage.Extension), keywords)
		if err := s.files.Write(name, []byte(content)); err != nil {
			return err
		}
		s.logger.Info("entry created", slog.String("path", name))
	}

	if err := s.opener.Open(ctx, path); err != nil {
		return err
	}
	return s.sess.Open(path)
}

// Topics lists every existing topic (file names minus extension, flat
// namespace only). A missing wiki directory yields an empty list.
func (s *Store) Topics() ([]string, error) {
	metas, err := s.files.List()
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(metas))
	for _, m := range metas {
		topics = append(topics, strings.TrimSuffix(m.Path, storage.Extension))
	}
	return topics, nil
}

// FindEntry picks a topic interactively and visits it. A non-empty query
// narrows the candidates by fuzzy match first; free text typed at the
// prompt is accepted as-is, which is how new entries get created from the
// picker. A single unambiguous fuzzy match skips the prompt.
func (s *Store) FindEntry(ctx context.Context, query string) error {
	topics, err := s.Topics()
	if err != nil {
		return err
	}

	choices := topics
	if query != "" {
		ranked := fuzzy.Find(query, topics)
		choices = make([]string, len(ranked))
		for i, r := range ranked {
			choices[i] = r.Str
		}
		if len(choices) == 1 {
			return s.Visit(ctx, choices[0])
		}
		if len(choices) == 0 {
			// Nothing matches; offer the query itself for creation.
			choices = []string{query}
		}
	}

	choice, err := s.prompter.Pick(ctx, "Wiki entry", choices)
	if err != nil {
		return fmt.Errorf("wiki: entry prompt: %w", err)
	}
	return s.Visit(ctx, choice)
}

// FindModeEntry visits the canonical entry for an editing mode, keyed by
// the mode name plus the fixed suffix.
func (s *Store) FindModeEntry(ctx context.Context, mode string) error {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return nil
	}
	return s.Visit(ctx, mode+ModeSuffix)
}

// IsEntry reports whether path is a wiki entry: the fixed extension and a
// containing directory that canonically equals the wiki directory. Files
// in nested subdirectories are not entries even with the right extension.
func (s *Store) IsEntry(path string) bool {
	if !strings.HasSuffix(path, storage.Extension) {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return false
	}
	return parent == s.dir
}

// MarkModified flags the open entry for topic as having unsaved changes
// (or clears the flag). The editing workflow calls this so that CloseAll
// knows which entries need confirmation.
func (s *Store) MarkModified(topic string, modified bool) error {
	path, err := s.ResolvePath(topic)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	return s.sess.MarkModified(path, modified)
}

// CloseAll closes every open session entry that is a wiki entry, returning
// the number closed. Entries with unsaved modifications are closed only
// after per-entry confirmation; declining skips the entry, a prompt error
// aborts the sweep. Non-entries are never touched.
func (s *Store) CloseAll(ctx context.Context) (int, error) {
	closed := 0
	for _, e := range s.sess.Entries() {
		if e.Path == "" || !s.IsEntry(e.Path) {
			continue
		}
		if e.Modified {
			ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("%s has unsaved changes; close anyway?", filepath.Base(e.Path)))
			if err != nil {
				return closed, fmt.Errorf("wiki: close prompt: %w", err)
			}
			if !ok {
				continue
			}
		}
		if err := s.sess.Close(e.Path); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// LinksHere searches the wiki directory for entries linking to file. An
// empty file argument defaults to the session's current entry. When the
// resolved file is not a wiki entry no search runs and the result is empty.
func (s *Store) LinksHere(ctx context.Context, file string) ([]search.Match, error) {
	if file == "" {
		file = s.sess.Current()
	}
	if file == "" || !s.IsEntry(file) {
		return nil, nil
	}
	// Match both [[wiki:target.org]] and the extensionless [[wiki:target]]
	// spelling; the character class pins the end of the target.
	topic := strings.TrimSuffix(filepath.Base(file), storage.Extension)
	pattern := `\[\[wiki:` + regexp.QuoteMeta(topic) +
		`(` + regexp.QuoteMeta(storage.Extension) + `)?[\]\[]`
	return s.searcher.Search(ctx, pattern, s.dir)
}

// FindKeyword searches the wiki directory for keyword header lines. The
// pattern is fixed; narrowing by keyword tokens is the caller's concern.
func (s *Store) FindKeyword(ctx context.Context) ([]search.Match, error) {
	return s.searcher.Search(ctx, KeywordPattern, s.dir)
}
