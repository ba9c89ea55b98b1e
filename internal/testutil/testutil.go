// Package testutil provides shared test helpers for setting up wiki
// directories and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/gausby/mg-org-wiki/internal/index"
	"github.com/gausby/mg-org-wiki/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "orgwiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWiki creates a temporary wiki directory with a storage.Provider.
func TestWiki(t *testing.T) (string, storage.Provider) {
	t.Helper()
	wikiDir := t.TempDir()
	store, err := storage.NewFS(wikiDir)
	if err != nil {
		t.Fatal(err)
	}
	return wikiDir, store
}
