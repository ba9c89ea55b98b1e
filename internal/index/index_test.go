package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "orgwiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := EntryRow{
		Path:      "hello.org",
		Topic:     "hello",
		Title:     "hello",
		Checksum:  "abc123",
		Keywords:  []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertEntry(row, "* Hello\nbody", []string{"other.org"}); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	cs, err := db.GetChecksum("hello.org")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	row := EntryRow{Path: "a.org", Checksum: "1", UpdatedAt: time.Now()}
	_ = db.UpsertEntry(row, "body", []string{"b.org", "c.org"})
	row.Checksum = "2"
	_ = db.UpsertEntry(row, "body", []string{"c.org"})

	bl, err := db.Backlinks("b.org")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 0 {
		t.Errorf("stale link survived upsert: %v", bl)
	}
}

func TestUpsertNormalizesExtensionlessTargets(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "a.org", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"b", "c.org"})

	for _, target := range []string{"b.org", "c.org"} {
		bl, err := db.Backlinks(target)
		if err != nil {
			t.Fatalf("Backlinks(%q): %v", target, err)
		}
		if len(bl) != 1 || bl[0] != "a.org" {
			t.Errorf("Backlinks(%q) = %v, want [a.org]", target, bl)
		}
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "a.org", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"b.org"})
	_ = db.UpsertEntry(EntryRow{Path: "c.org", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"b.org"})

	bl, err := db.Backlinks("b.org")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
	if bl[0] != "a.org" || bl[1] != "c.org" {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestDeleteEntry(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "gone.org", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"x.org"})
	if err := db.DeleteEntry("gone.org"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	cs, _ := db.GetChecksum("gone.org")
	if cs != "" {
		t.Errorf("checksum after delete = %q", cs)
	}
	bl, _ := db.Backlinks("x.org")
	if len(bl) != 0 {
		t.Errorf("links after delete = %v", bl)
	}
}

func TestListEntries_KeywordFilter(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "a.org", Keywords: []string{"go"}, UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertEntry(EntryRow{Path: "b.org", Keywords: []string{"go", "emacs"}, UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertEntry(EntryRow{Path: "c.org", Keywords: []string{"cooking"}, UpdatedAt: time.Now()}, "", nil)

	items, total, err := db.ListEntries(10, 0, "go", "path")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total = %d, len = %d, want 2", total, len(items))
	}
	if items[0].Path != "a.org" || items[1].Path != "b.org" {
		t.Errorf("items = %v", items)
	}
}

func TestListKeywords(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "a.org", Keywords: []string{"go"}, UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertEntry(EntryRow{Path: "b.org", Keywords: []string{"go", "emacs"}, UpdatedAt: time.Now()}, "", nil)

	kws, err := db.ListKeywords()
	if err != nil {
		t.Fatalf("ListKeywords: %v", err)
	}
	if len(kws) != 2 {
		t.Fatalf("keywords = %v", kws)
	}
	if kws[0].Keyword != "go" || kws[0].Count != 2 {
		t.Errorf("first keyword = %+v", kws[0])
	}
}

func TestSearchFallback(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "a.org", Title: "Go Patterns", UpdatedAt: time.Now()}, "channels and goroutines", nil)
	_ = db.UpsertEntry(EntryRow{Path: "b.org", Title: "Cooking", UpdatedAt: time.Now()}, "recipes", nil)

	hits, err := db.Search("goroutines", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Path != "a.org" {
		t.Errorf("hits = %v", hits)
	}
}
