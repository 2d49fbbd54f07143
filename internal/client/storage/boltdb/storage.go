// Package boltdb реализует storage.RecordStore поверх bbolt.
// Все записи лежат в одном файле records.db, что удобно для переносимых установок.
package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketRecords  = []byte("records")
	bucketMetadata = []byte("metadata")

	keySchemaCreated = []byte("created_at")
)

// Storage represents BoltDB storage implementation for client records
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return fmt.Errorf("failed to create records bucket: %w", err)
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMetadata)
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		// Время создания файла, пишется один раз
		if meta.Get(keySchemaCreated) == nil {
			stamp := []byte(time.Now().UTC().Format(time.RFC3339))
			if err := meta.Put(keySchemaCreated, stamp); err != nil {
				return fmt.Errorf("failed to save creation time: %w", err)
			}
		}

		return nil
	})
}

// CreatedAt returns the time the database file was initialised.
func (s *Storage) CreatedAt() (time.Time, error) {
	var created time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketMetadata).Get(keySchemaCreated)
		if raw == nil {
			return fmt.Errorf("creation time not found")
		}
		t, err := time.Parse(time.RFC3339, string(raw))
		if err != nil {
			return fmt.Errorf("failed to parse creation time: %w", err)
		}
		created = t
		return nil
	})
	return created, err
}
