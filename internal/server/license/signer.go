// Package license выпускает подписанные лицензии Thought Book.
package license

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/iudanet/thoughtbook/internal/crypto"
	"github.com/iudanet/thoughtbook/internal/models"
)

// Signer подписывает license_data закрытым ключом сервера
type Signer struct {
	key *rsa.PrivateKey
	now func() time.Time
}

// NewSigner создает Signer
func NewSigner(key *rsa.PrivateKey) *Signer {
	return &Signer{key: key, now: time.Now}
}

// LoadSigner читает PEM закрытый ключ из файла
func LoadSigner(path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license key: %w", err)
	}

	key, err := crypto.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse license key: %w", err)
	}

	return NewSigner(key), nil
}

// PublicKey возвращает ключ, которым клиенты проверяют лицензии
func (s *Signer) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}

// Issue формирует license_data для оплаты и подписывает его.
// Подпись считается над точными байтами license_data.
func (s *Signer) Issue(payment *models.Payment, deviceID string) (*models.IssuedLicense, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)

	data, err := json.Marshal(models.LicensePayload{
		IssuedAt:  issuedAt,
		Email:     payment.Email,
		Reference: payment.Reference,
		DeviceID:  deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal license data: %w", err)
	}

	signature, err := crypto.SignPKCS1v15(s.key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign license: %w", err)
	}

	return &models.IssuedLicense{
		IssuedAt:    issuedAt,
		Reference:   payment.Reference,
		DeviceID:    deviceID,
		LicenseData: string(data),
		LicenseKey:  signature,
	}, nil
}
