package storage

import "context"

//go:generate moq -out records_mock.go . RecordStore

// Record keys known to the application.
const (
	RecordSettings      = "settings"
	RecordMetrics       = "metrics"
	RecordLicense       = "license"
	RecordEmail         = "email"
	RecordDevice        = "device"
	RecordFeedbackQueue = "feedback_queue"
)

// RecordStore хранит небольшие JSON документы по ключу
// (настройки, метрики, лицензия, очередь отзывов).
type RecordStore interface {
	// Get decodes record into v
	// Returns ErrRecordNotFound if record doesn't exist and
	// ErrRecordCorrupted if stored bytes are not valid JSON for v
	Get(ctx context.Context, key string, v any) error

	// Put encodes v and stores it under key
	Put(ctx context.Context, key string, v any) error

	// Delete removes record. Deleting a missing record is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether record is present
	Exists(ctx context.Context, key string) (bool, error)
}
