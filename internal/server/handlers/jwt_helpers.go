package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PaymentIssuer значение iss в токенах оплаты
const PaymentIssuer = "thoughtbook"

// PaymentClaims представляет JWT claims токена оплаты.
// ID (jti) совпадает с reference оплаты в хранилище.
type PaymentClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

// GeneratePaymentToken создает токен, который клиент предъявляет в /license
func GeneratePaymentToken(cfg JWTConfig, paymentID, email string) (string, error) {
	now := time.Now()

	claims := PaymentClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        paymentID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    PaymentIssuer,
		},
	}
	if cfg.TokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.TokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidatePaymentToken валидирует и парсит токен оплаты
func ValidatePaymentToken(cfg JWTConfig, tokenString string) (*PaymentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PaymentClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(PaymentIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*PaymentClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no payment id")
	}

	return claims, nil
}
