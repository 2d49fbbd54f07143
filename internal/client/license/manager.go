package license

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
)

// Manager хранит лицензию в RecordStore и держит флаг премиума.
// Флаг выставляется только после проверки подписи и никогда не
// восстанавливается из кеша без повторной проверки.
type Manager struct {
	store     storage.RecordStore
	validator *Validator
	logger    *slog.Logger
	premium   atomic.Bool
}

// NewManager создает менеджер лицензии
func NewManager(store storage.RecordStore, validator *Validator, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Load перепроверяет сохраненную лицензию. Поврежденная или поддельная
// запись удаляется, приложение возвращается к бесплатной версии.
func (m *Manager) Load(ctx context.Context) (bool, error) {
	m.premium.Store(false)

	var rec models.LicenseRecord
	err := m.store.Get(ctx, storage.RecordLicense, &rec)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		return false, nil
	case errors.Is(err, storage.ErrRecordCorrupted):
		m.logger.Error("license record corrupted, removing", "error", err)
		return false, m.remove(ctx)
	case err != nil:
		return false, fmt.Errorf("failed to read license: %w", err)
	}

	if err := m.validator.Check(rec.LicenseData, rec.LicenseKey); err != nil {
		m.logger.Error("license verification failed, removing", "error", err)
		return false, m.remove(ctx)
	}

	m.logger.Info("license verified successfully")
	m.premium.Store(true)
	return true, nil
}

// Activate проверяет лицензию и сохраняет ее. Невалидная лицензия
// не сохраняется и возвращает ErrInvalidLicense.
func (m *Manager) Activate(ctx context.Context, licenseData, licenseKey string) error {
	if err := m.validator.Check(licenseData, licenseKey); err != nil {
		m.logger.Warn("license activation rejected", "error", err)
		return err
	}

	rec := models.LicenseRecord{LicenseData: licenseData, LicenseKey: licenseKey}
	if err := m.store.Put(ctx, storage.RecordLicense, rec); err != nil {
		return fmt.Errorf("failed to save license: %w", err)
	}

	m.premium.Store(true)
	m.logger.Info("license activated")
	return nil
}

// IsPremium returns the result of the last successful verification.
func (m *Manager) IsPremium() bool {
	return m.premium.Load()
}

func (m *Manager) remove(ctx context.Context) error {
	if err := m.store.Delete(ctx, storage.RecordLicense); err != nil {
		return fmt.Errorf("failed to remove invalid license: %w", err)
	}
	return nil
}
