package index

// EntryIndex defines the interface for entry indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type EntryIndex interface {
	UpsertEntry(e EntryRow, body string, links []string) error
	DeleteEntry(path string) error
	GetChecksum(path string) (string, error)
	ListEntries(limit, offset int, keyword, sort string) ([]EntryRow, int, error)
	ListKeywords() ([]KeywordCount, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
