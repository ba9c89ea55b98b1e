package api

import (
	"github.com/gausby/mg-org-wiki/internal/entryservice"
	"github.com/gausby/mg-org-wiki/internal/index"
)

// CreateEntryRequest is the request body for creating an entry. Keywords is
// the free-text keyword field; Body is optional org content placed below
// the generated header.
type CreateEntryRequest struct {
	Topic    string `json:"topic"`
	Keywords string `json:"keywords"`
	Body     string `json:"body"`
}

// UpdateEntryRequest is the request body for updating an entry.
type UpdateEntryRequest struct {
	Content string `json:"content"`
}

// EntryDetail is the full entry response type (aliased from the domain layer).
type EntryDetail = entryservice.EntryDetail

// EntryListItem is a lightweight item in a list response.
type EntryListItem = entryservice.EntryListItem

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries"`
	Total   int             `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// BacklinksResponse wraps a backlink listing.
type BacklinksResponse struct {
	Backlinks []string `json:"backlinks"`
}

// KeywordsResponse wraps the keyword inventory.
type KeywordsResponse struct {
	Keywords []index.KeywordCount `json:"keywords"`
}
