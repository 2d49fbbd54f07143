package storage

import "errors"

// Common client storage errors
var (
	// ErrNoteNotFound indicates that note with given id does not exist
	ErrNoteNotFound = errors.New("note not found")

	// ErrRecordNotFound indicates that record with given key does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordCorrupted indicates that stored record could not be decoded
	ErrRecordCorrupted = errors.New("record corrupted")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
