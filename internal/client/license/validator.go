// Package license проверяет и хранит премиум лицензию.
//
// Лицензия это пара (license_data, license_key), где license_key является
// base64 подписью RSA PKCS#1 v1.5 (SHA-256) над байтами license_data.
// Подпись проверяется публичным ключом, встроенным в бинарник.
package license

import (
	"crypto/rsa"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/thoughtbook/internal/crypto"
)

//go:embed public_key.pem
var embeddedPublicKey []byte

// ErrInvalidLicense лицензия не прошла проверку подписи
var ErrInvalidLicense = errors.New("invalid license")

// LoadPublicKey возвращает ключ из PEM файла path или встроенный ключ, если path пуст.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data := embeddedPublicKey
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key: %w", err)
		}
	}
	return crypto.ParsePublicKeyPEM(data)
}

// Validator проверяет подпись лицензии
type Validator struct {
	key *rsa.PublicKey
}

// NewValidator создает Validator для публичного ключа key
func NewValidator(key *rsa.PublicKey) *Validator {
	return &Validator{key: key}
}

// Check returns ErrInvalidLicense wrapping the verification failure.
func (v *Validator) Check(licenseData, licenseKey string) error {
	if licenseData == "" || licenseKey == "" {
		return fmt.Errorf("%w: empty license", ErrInvalidLicense)
	}
	if err := crypto.VerifyPKCS1v15(v.key, []byte(licenseData), licenseKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLicense, err)
	}
	return nil
}

// Validate reports whether licenseKey is a valid signature of licenseData.
func (v *Validator) Validate(licenseData, licenseKey string) bool {
	return v.Check(licenseData, licenseKey) == nil
}
