package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/dbx"
	"github.com/iudanet/thoughtbook/internal/models"
)

// AddNote inserts a new note and returns its id
func (s *Storage) AddNote(ctx context.Context, title, content string) (int64, error) {
	return s.addNote(ctx, s.db, title, content)
}

func (s *Storage) addNote(ctx context.Context, db dbx.DBTX, title, content string) (int64, error) {
	query := `
		INSERT INTO notes (title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	now := s.now().UTC()
	res, err := db.ExecContext(ctx, query, title, content, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get note id: %w", err)
	}

	return id, nil
}

// UpdateNote overwrites title and content and bumps updated_at
func (s *Storage) UpdateNote(ctx context.Context, id int64, title, content string) error {
	query := `
		UPDATE notes
		SET title = ?, content = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query, title, content, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNoteNotFound
	}

	return nil
}

// GetNote retrieves a note by id
func (s *Storage) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	query := `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		WHERE id = ?
	`

	note := &models.Note{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListNotes returns all notes ordered by updated_at, newest first
func (s *Storage) ListNotes(ctx context.Context) ([]*models.Note, error) {
	query := `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]*models.Note, 0)
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// CountNotes returns number of stored notes
func (s *Storage) CountNotes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

// DeleteNote removes a note. Deleting a missing id is not an error.
func (s *Storage) DeleteNote(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ClearNotes removes all notes
func (s *Storage) ClearNotes(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	return nil
}

// ImportNotes inserts notes in one transaction and returns how many were added
func (s *Storage) ImportNotes(ctx context.Context, notes []models.LegacyNote) (int, error) {
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, n := range notes {
			if _, err := s.addNote(ctx, tx, n.Title, n.Content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import notes: %w", err)
	}

	return len(notes), nil
}

var _ storage.NoteStorage = (*Storage)(nil)
