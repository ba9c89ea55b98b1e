package index

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gausby/mg-org-wiki/internal/storage"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Path      string
	Topic     string
	Title     string
	Checksum  string
	Keywords  []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// KeywordCount is one keyword with the number of entries carrying it.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// UpsertEntry inserts or replaces an entry, its FTS row, and its outgoing
// links within a transaction.
func (db *DB) UpsertEntry(e EntryRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	kwJSON, _ := json.Marshal(e.Keywords)

	// Upsert entries table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO entries (path, topic, title, checksum, keywords, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			topic      = excluded.topic,
			title      = excluded.title,
			checksum   = excluded.checksum,
			keywords   = excluded.keywords,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, e.Path, e.Topic, e.Title, e.Checksum, string(kwJSON), body, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Path, e.Title, body, e.Keywords); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert. Targets are stored as
	// canonical file names; [[wiki:target]] without the extension is valid
	// link syntax and must land on the same row as [[wiki:target.org]].
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, e.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if !strings.HasSuffix(target, storage.Extension) {
				target += storage.Extension
			}
			if _, err := stmt.Exec(e.Path, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEntry removes an entry, its FTS row, and its outgoing links.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an entry, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListEntries returns a page of entries with an optional keyword filter.
// sort is one of "updated_at" (default, newest first), "title", "path".
func (db *DB) ListEntries(limit, offset int, keyword, sort string) ([]EntryRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if keyword != "" {
		// Keywords are stored as a JSON string array.
		where = `WHERE keywords LIKE ?`
		args = append(args, `%"`+keyword+`"%`)
	}

	order := `updated_at DESC`
	switch sort {
	case "title":
		order = `title COLLATE NOCASE ASC`
	case "path":
		order = `path ASC`
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT path, topic, title, checksum, keywords, updated_at
		FROM entries %s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, where, order)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var e EntryRow
		var kwJSON string
		if err := rows.Scan(&e.Path, &e.Topic, &e.Title, &e.Checksum, &kwJSON, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(kwJSON), &e.Keywords)
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ListKeywords returns every keyword in use with its entry count, most
// frequent first.
func (db *DB) ListKeywords() ([]KeywordCount, error) {
	rows, err := db.conn.Query(`
		SELECT j.value, count(*)
		FROM entries, json_each(entries.keywords) AS j
		GROUP BY j.value
		ORDER BY count(*) DESC, j.value ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list keywords: %w", err)
	}
	defer rows.Close()

	var out []KeywordCount
	for rows.Next() {
		var kc KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

// Backlinks returns every entry path that links to the given target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
