// Package sqlite хранит платежи, отзывы и выданные лицензии сервера.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/iudanet/thoughtbook/internal/dbx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is the SQLite storage of the license server: payments,
// feedback and issued licenses
type Storage struct {
	db *sql.DB
}

// New открывает базу сервера и накатывает миграции.
// ":memory:" подходит для тестов.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	// лицензии ссылаются на платежи
	db, err := dbx.OpenSQLite(ctx, dbPath, migrations, "PRAGMA foreign_keys = ON;")
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
