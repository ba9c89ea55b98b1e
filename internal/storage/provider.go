// Package storage defines the wiki directory file-system abstraction.
package storage

import "github.com/gausby/mg-org-wiki/internal/models"

// Provider is the interface for wiki file operations. The wiki namespace is
// flat: entries live directly in the root directory, never in subdirectories.
type Provider interface {
	// List returns metadata for every .org file directly in the wiki root.
	List() ([]models.EntryMetadata, error)
	// Read returns the raw bytes of the file at name (relative to the root).
	Read(name string) ([]byte, error)
	// Write atomically writes content to name (relative to the root).
	Write(name string, content []byte) error
	// Root returns the absolute path of the wiki directory.
	Root() string
}
