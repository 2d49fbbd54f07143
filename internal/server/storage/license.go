package storage

import (
	"context"

	"github.com/iudanet/thoughtbook/internal/models"
)

// LicenseStorage defines interface for issued licenses.
// One license is kept per payment and device.
type LicenseStorage interface {
	// SaveLicense stores issued license, replacing the previous one
	// for the same reference and device
	SaveLicense(ctx context.Context, lic *models.IssuedLicense) error

	// GetLicense retrieves license by payment reference and device id.
	// Returns ErrLicenseNotFound if none was issued.
	GetLicense(ctx context.Context, reference, deviceID string) (*models.IssuedLicense, error)
}
