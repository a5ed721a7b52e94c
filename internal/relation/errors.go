package relation

import "errors"

var (
	// ErrNotAuthenticated signals there is no current actor to act as.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnauthorized indicates the actor does not own the record.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the record is not in the local cache.
	ErrNotFound = errors.New("record not found")
	// ErrEmptyText rejects a comment with no content.
	ErrEmptyText = errors.New("comment text is required")
)
