package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidTopic is returned when a topic resolves to a path outside
	// the wiki directory (path separators or traversal sequences).
	ErrInvalidTopic = errors.New("invalid topic")
)
