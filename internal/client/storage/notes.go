package storage

import (
	"context"

	"github.com/iudanet/thoughtbook/internal/models"
)

//go:generate moq -out notes_mock.go . NoteStorage

// NoteStorage defines interface for the local note table.
// Content is stored exactly as given; the caller is responsible for the cipher.
type NoteStorage interface {
	// AddNote inserts a new note and returns its id
	AddNote(ctx context.Context, title, content string) (int64, error)

	// UpdateNote overwrites title and content and bumps updated_at
	// Returns ErrNoteNotFound if note doesn't exist
	UpdateNote(ctx context.Context, id int64, title, content string) error

	// GetNote retrieves a note by id
	// Returns ErrNoteNotFound if note doesn't exist
	GetNote(ctx context.Context, id int64) (*models.Note, error)

	// ListNotes returns all notes ordered by updated_at, newest first
	ListNotes(ctx context.Context) ([]*models.Note, error)

	// CountNotes returns number of stored notes
	CountNotes(ctx context.Context) (int, error)

	// DeleteNote removes a note. Deleting a missing id is not an error.
	DeleteNote(ctx context.Context, id int64) error

	// ClearNotes removes all notes
	ClearNotes(ctx context.Context) error

	// ImportNotes inserts notes in one transaction
	ImportNotes(ctx context.Context, notes []models.LegacyNote) (int, error)
}
