package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gausby/mg-org-wiki/internal/checksum"
	"github.com/gausby/mg-org-wiki/internal/parser"
	"github.com/gausby/mg-org-wiki/internal/storage"
)

// Sync walks the wiki directory and brings the index up to date:
//   - new/changed entries are parsed and upserted
//   - entries removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexEntry(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale rows.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexEntry parses data and upserts it into the DB.
func indexEntry(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	row := EntryRow{
		Path:      path,
		Topic:     strings.TrimSuffix(path, storage.Extension),
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Keywords:  res.Keywords,
		UpdatedAt: time.Now(),
	}
	return db.UpsertEntry(row, res.Body, res.Links)
}
