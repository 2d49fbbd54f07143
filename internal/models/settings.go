package models

// Default limits for the free tier.
const (
	DefaultNoteCountLimit   = 10
	DefaultMaxUpgradeRemind = 2
)

// Settings содержимое settings.json
type Settings struct {
	RequestPassword bool `json:"request_password"`
}

// DefaultSettings настройки при первом запуске или поврежденном файле
func DefaultSettings() Settings {
	return Settings{RequestPassword: true}
}

// Metrics счетчики freemium модели
type Metrics struct {
	NoteCountLimit       int `json:"note_count_limit"`
	UpgradeReminderCount int `json:"upgrade_reminder_count"`
	MaxUpgradeRemind     int `json:"max_upgrade_remind"`
}

// DefaultMetrics метрики по умолчанию
func DefaultMetrics() Metrics {
	return Metrics{
		NoteCountLimit:   DefaultNoteCountLimit,
		MaxUpgradeRemind: DefaultMaxUpgradeRemind,
	}
}
