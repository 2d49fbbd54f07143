// Package sqlite реализует локальное хранилище заметок на modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/iudanet/thoughtbook/internal/dbx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage represents SQLite note storage
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite storage instance
// dbPath is the path to the notes database file (BMTbnotes.db)
// Use ":memory:" for in-memory database (useful for testing)
func New(ctx context.Context, dbPath string) (*Storage, error) {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := dbx.OpenSQLite(ctx, dbPath, migrations)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
