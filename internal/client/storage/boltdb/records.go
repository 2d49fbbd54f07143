package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/thoughtbook/internal/client/storage"
)

// Get implements storage.RecordStore.
func (s *Storage) Get(ctx context.Context, key string, v any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		// data валидна только внутри транзакции, Unmarshal копирует значения
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %s: %v", storage.ErrRecordCorrupted, key, err)
		}

		return nil
	})
}

// Put implements storage.RecordStore.
func (s *Storage) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}

		return nil
	})
}

// Delete implements storage.RecordStore.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		// Delete отсутствующего ключа в bbolt не ошибка
		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}

		return nil
	})
}

// Exists implements storage.RecordStore.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}
		ok = bucket.Get([]byte(key)) != nil
		return nil
	})
	return ok, err
}

var _ storage.RecordStore = (*Storage)(nil)
