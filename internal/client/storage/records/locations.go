package records

import (
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/config"
)

// DefaultLocations сопоставляет ключи записей с файлами приложения
func DefaultLocations(p config.Paths) map[string]Location {
	return map[string]Location{
		storage.RecordSettings:      {Path: p.SettingsFile},
		storage.RecordFeedbackQueue: {Path: p.FeedbackFile},
		storage.RecordMetrics:       {Path: p.MetricsFile, Hidden: true},
		storage.RecordLicense:       {Path: p.LicenseFile, Hidden: true},
		storage.RecordEmail:         {Path: p.EmailFile, Hidden: true},
		storage.RecordDevice:        {Path: p.DeviceFile, Hidden: true},
	}
}
