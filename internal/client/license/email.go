package license

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/validation"
)

// EmailStore хранит email пользователя для оплаты (email_config.json)
type EmailStore struct {
	store storage.RecordStore
}

// NewEmailStore creates EmailStore.
func NewEmailStore(store storage.RecordStore) *EmailStore {
	return &EmailStore{store: store}
}

// Get возвращает сохраненный email или пустую строку
func (e *EmailStore) Get(ctx context.Context) (string, error) {
	var cfg models.EmailConfig
	err := e.store.Get(ctx, storage.RecordEmail, &cfg)
	switch {
	case err == nil:
		return cfg.UserEmail, nil
	case errors.Is(err, storage.ErrRecordNotFound), errors.Is(err, storage.ErrRecordCorrupted):
		return "", nil
	default:
		return "", fmt.Errorf("failed to read email: %w", err)
	}
}

// Set validates and saves email.
func (e *EmailStore) Set(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	if err := e.store.Put(ctx, storage.RecordEmail, models.EmailConfig{UserEmail: email}); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}
