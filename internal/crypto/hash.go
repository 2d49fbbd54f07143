package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashSecret хеширует пароль или код восстановления с использованием SHA256.
// Результат hex-encoded, 64 символа; этот формат хранится в pass.pass и recovery.key.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:]), nil
}

// VerifySecret проверяет, соответствует ли секрет сохраненному хешу.
// Сравнение выполняется за постоянное время.
func VerifySecret(secret, hashed string) bool {
	if secret == "" || hashed == "" {
		return false
	}

	computed, err := HashSecret(secret)
	if err != nil {
		return false
	}

	// hex в файле мог быть записан в верхнем регистре
	stored := strings.ToLower(strings.TrimSpace(hashed))
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}
