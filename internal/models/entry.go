// Package models defines the domain types for the wiki.
package models

import "time"

// EntryMetadata is a lightweight representation of an on-disk entry
// returned by storage list operations.
type EntryMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
