// Package settings читает и сохраняет settings.json.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
)

// Service wraps the settings record.
type Service struct {
	store  storage.RecordStore
	logger *slog.Logger
}

// NewService создает сервис настроек
func NewService(store storage.RecordStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Load возвращает настройки; при отсутствии или повреждении файла
// записываются и возвращаются значения по умолчанию.
func (s *Service) Load(ctx context.Context) (models.Settings, error) {
	var st models.Settings
	err := s.store.Get(ctx, storage.RecordSettings, &st)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, storage.ErrRecordNotFound):
	case errors.Is(err, storage.ErrRecordCorrupted):
		s.logger.Warn("settings corrupted, using defaults", "error", err)
	default:
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	st = models.DefaultSettings()
	if err := s.Save(ctx, st); err != nil {
		s.logger.Error("failed to write default settings", "error", err)
	}
	return st, nil
}

// Save persists settings.
func (s *Service) Save(ctx context.Context, st models.Settings) error {
	if err := s.store.Put(ctx, storage.RecordSettings, st); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// SetRequestPassword включает или выключает запрос пароля при запуске
func (s *Service) SetRequestPassword(ctx context.Context, on bool) error {
	st, err := s.Load(ctx)
	if err != nil {
		return err
	}
	st.RequestPassword = on
	if err := s.Save(ctx, st); err != nil {
		return err
	}
	s.logger.Info("startup password setting changed", "request_password", on)
	return nil
}
