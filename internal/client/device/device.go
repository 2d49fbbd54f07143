// Package device выдает постоянный идентификатор установки.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
)

// ID returns the device id stored under storage.RecordDevice.
// A new UUIDv4 is generated and persisted when the record is missing,
// corrupted or holds something that is not a UUID.
func ID(ctx context.Context, store storage.RecordStore, logger *slog.Logger) (string, error) {
	var cfg models.DeviceConfig
	err := store.Get(ctx, storage.RecordDevice, &cfg)
	switch {
	case err == nil:
		if _, perr := uuid.Parse(cfg.DeviceID); perr == nil {
			return cfg.DeviceID, nil
		}
		logger.Warn("stored device id is invalid, regenerating", "device_id", cfg.DeviceID)
	case errors.Is(err, storage.ErrRecordNotFound):
	case errors.Is(err, storage.ErrRecordCorrupted):
		logger.Warn("device record corrupted, regenerating", "error", err)
	default:
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	cfg.DeviceID = uuid.NewString()
	if err := store.Put(ctx, storage.RecordDevice, cfg); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}

	logger.Info("device id generated", "device_id", cfg.DeviceID)
	return cfg.DeviceID, nil
}
