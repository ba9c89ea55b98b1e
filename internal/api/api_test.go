package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gausby/mg-org-wiki/internal/entryservice"
	"github.com/gausby/mg-org-wiki/internal/index"
	"github.com/gausby/mg-org-wiki/internal/storage"
)

// testEnv sets up a temp wiki dir, SQLite DB, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*entryservice.Service, http.Handler) {
	t.Helper()

	wikiDir := t.TempDir()
	store, err := storage.NewFS(wikiDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "orgwiki-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := entryservice.NewService(store, db)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func createEntry(t *testing.T, router http.Handler, topic, keywords, body string) EntryDetail {
	t.Helper()
	payload, _ := json.Marshal(CreateEntryRequest{Topic: topic, Keywords: keywords, Body: body})
	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q status = %d, body = %s", topic, w.Code, w.Body.String())
	}
	var entry EntryDetail
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return entry
}

func TestCreateAndGetEntry(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "rust-notes", "rust systems", "* Ownership\n")

	req := httptest.NewRequest(http.MethodGet, "/entries/rust-notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var entry EntryDetail
	_ = json.Unmarshal(w.Body.Bytes(), &entry)
	if entry.Path != "rust-notes.org" {
		t.Errorf("path = %q", entry.Path)
	}
	if entry.Title != "rust-notes" {
		t.Errorf("title = %q, want rust-notes", entry.Title)
	}
	if len(entry.Keywords) != 2 {
		t.Errorf("keywords = %v", entry.Keywords)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "dup", "", "")

	payload, _ := json.Marshal(CreateEntryRequest{Topic: "dup"})
	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateInvalidTopic(t *testing.T) {
	_, router := testEnv(t, "")

	for _, topic := range []string{"", "   ", "../escape"} {
		payload, _ := json.Marshal(CreateEntryRequest{Topic: topic})
		req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(payload))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %q = %d, want 400", topic, w.Code)
		}
	}
}

func TestGetMissingEntry(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/entries/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing = %d, want 404", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEntry(t, router, "lock", "", "v1")

	// Stale checksum is rejected.
	payload, _ := json.Marshal(UpdateEntryRequest{Content: "#+TITLE: lock\n#+KEYWORDS:\n\nv2\n"})
	req := httptest.NewRequest(http.MethodPut, "/entries/lock", bytes.NewReader(payload))
	req.Header.Set("If-Match", "deadbeef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusPreconditionFailed {
		t.Fatalf("stale update = %d, want 412", w.Code)
	}

	// Matching checksum goes through.
	req = httptest.NewRequest(http.MethodPut, "/entries/lock", bytes.NewReader(payload))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var entry EntryDetail
	_ = json.Unmarshal(w.Body.Bytes(), &entry)
	if entry.Checksum == created.Checksum {
		t.Error("checksum did not change after update")
	}
}

func TestUpdateMissingEntry(t *testing.T) {
	_, router := testEnv(t, "")

	payload, _ := json.Marshal(UpdateEntryRequest{Content: "x"})
	req := httptest.NewRequest(http.MethodPut, "/entries/nope", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestListEntriesWithKeywordFilter(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "alpha", "go tooling", "")
	createEntry(t, router, "beta", "rust", "")

	req := httptest.NewRequest(http.MethodGet, "/entries?keyword=rust", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp EntryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || len(resp.Entries) != 1 {
		t.Fatalf("filtered list = %+v", resp)
	}
	if resp.Entries[0].Path != "beta.org" {
		t.Errorf("filtered entry = %q", resp.Entries[0].Path)
	}
}

func TestBacklinks(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "target", "", "")
	createEntry(t, router, "source", "", "see [[wiki:target.org]]")

	req := httptest.NewRequest(http.MethodGet, "/entries/target/backlinks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks status = %d", w.Code)
	}
	var resp BacklinksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Backlinks) != 1 || resp.Backlinks[0] != "source.org" {
		t.Errorf("backlinks = %v", resp.Backlinks)
	}
}

func TestKeywords(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "a", "shared solo", "")
	createEntry(t, router, "b", "shared", "")

	req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("keywords status = %d", w.Code)
	}
	var resp KeywordsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	counts := map[string]int{}
	for _, kw := range resp.Keywords {
		counts[kw.Keyword] = kw.Count
	}
	if counts["shared"] != 2 || counts["solo"] != 1 {
		t.Errorf("keyword counts = %v", counts)
	}
}

func TestSearch(t *testing.T) {
	_, router := testEnv(t, "")

	createEntry(t, router, "needle-entry", "", "the quick brown fox")

	req := httptest.NewRequest(http.MethodGet, "/search?q=quick", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "needle-entry.org" {
		t.Errorf("search results = %+v", resp.Results)
	}

	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search without q = %d, want 400", w.Code)
	}
}

func TestAuthToken(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}
