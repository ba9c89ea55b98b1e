// Package search runs regex searches over the wiki directory by shelling
// out to an external line-oriented search tool.
package search

import "context"

// Match is a single (file, line, text) search hit.
type Match struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Searcher runs a recursive regex search rooted at root and returns every
// matching line. Implementations must treat "no matches" as a successful
// empty result, not an error.
type Searcher interface {
	Search(ctx context.Context, pattern, root string) ([]Match, error)
}
