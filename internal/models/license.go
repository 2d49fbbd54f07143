package models

import "time"

// LicenseRecord представляет сохраненную лицензию.
// LicenseKey это base64 RSA подпись (PKCS#1 v1.5, SHA256) над байтами LicenseData.
type LicenseRecord struct {
	LicenseData string `json:"license_data"`
	LicenseKey  string `json:"license_key"`
}

// LicensePayload содержимое license_data, которое выдает сервер.
// Клиент не интерпретирует payload для проверки, только подпись.
type LicensePayload struct {
	IssuedAt  time.Time `json:"issued_at"`
	Email     string    `json:"email"`
	Reference string    `json:"reference"`
	DeviceID  string    `json:"device_id,omitempty"`
}

// EmailConfig содержимое email_config.json
type EmailConfig struct {
	UserEmail string `json:"user_email"`
}

// DeviceConfig содержимое config.json в скрытой папке
type DeviceConfig struct {
	DeviceID string `json:"device_id"`
}

// IssuedLicense лицензия, выданная сервером по оплате
type IssuedLicense struct {
	IssuedAt    time.Time `json:"issued_at"`
	Reference   string    `json:"reference"` // id оплаты
	DeviceID    string    `json:"device_id"`
	LicenseData string    `json:"license_data"`
	LicenseKey  string    `json:"license_key"`
}
