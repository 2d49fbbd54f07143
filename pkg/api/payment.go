package api

// PaymentRequest запрос POST /payment
type PaymentRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"` // в минимальных единицах валюты
}

// PaymentData данные созданной оплаты
type PaymentData struct {
	Reference        string `json:"reference"`         // подписанный токен оплаты, используется как Bearer для /license
	AuthorizationURL string `json:"authorization_url"` // страница подтверждения оплаты
}

// PaymentResponse ответ POST /payment
type PaymentResponse struct {
	Data PaymentData `json:"data"`
}

// LicenseRequest запрос POST /license
type LicenseRequest struct {
	DeviceID string `json:"device_id,omitempty"`
}

// LicenseResponse ответ POST /license: подписанная лицензия
type LicenseResponse struct {
	LicenseData string `json:"license_data"`
	LicenseKey  string `json:"license_key"` // base64 RSA PKCS#1 v1.5 подпись над license_data
}
