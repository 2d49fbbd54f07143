package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
)

// SaveLicense stores issued license
func (s *Storage) SaveLicense(ctx context.Context, lic *models.IssuedLicense) error {
	query := `
		INSERT OR REPLACE INTO licenses (reference, device_id, license_data, license_key, issued_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		lic.Reference,
		lic.DeviceID,
		lic.LicenseData,
		lic.LicenseKey,
		lic.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save license: %w", err)
	}

	return nil
}

// GetLicense retrieves license by payment reference and device id
func (s *Storage) GetLicense(ctx context.Context, reference, deviceID string) (*models.IssuedLicense, error) {
	query := `
		SELECT reference, device_id, license_data, license_key, issued_at
		FROM licenses
		WHERE reference = ? AND device_id = ?
	`

	lic := &models.IssuedLicense{}
	err := s.db.QueryRowContext(ctx, query, reference, deviceID).Scan(
		&lic.Reference,
		&lic.DeviceID,
		&lic.LicenseData,
		&lic.LicenseKey,
		&lic.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}

	return lic, nil
}
