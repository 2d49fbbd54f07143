package server

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/server/middleware"
)

// Config настройки сервера лицензий
type Config struct {
	Addr           string
	DBPath         string
	LicenseKeyFile string
	JWTSecret      string
	LatestVersion  string
	DownloadURL    string
	Notes          string
	TrustedProxies []string
	TokenTTL       time.Duration
	RateLimit      int
	Debug          bool

	// SelfConfirmPayments демо режим без платежного провайдера
	SelfConfirmPayments bool
}

// RegisterFlags связывает поля cfg с флагами
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", ":8080", "HTTP listen address")
	fs.StringVar(&c.DBPath, "db", "thoughtbook-server.db", "Path to SQLite database")
	fs.StringVar(&c.LicenseKeyFile, "license-key", "", "PEM RSA private key used to sign licenses (required)")
	fs.StringVar(&c.JWTSecret, "jwt-secret", "", "Secret for payment tokens (random if empty)")
	fs.StringVar(&c.LatestVersion, "latest-version", config.AppVersion, "Version announced in /update.json")
	fs.StringVar(&c.DownloadURL, "download-url", "", "Download URL announced in /update.json")
	fs.StringVar(&c.Notes, "notes", "", "Release notes announced in /update.json")
	fs.DurationVar(&c.TokenTTL, "token-ttl", 24*time.Hour, "Payment token lifetime, 0 for no expiry")
	fs.IntVar(&c.RateLimit, "rate-limit", DefaultRateLimit, "Requests per minute per client on POST routes, 0 disables")
	fs.StringSliceVar(&c.TrustedProxies, "trusted-proxy", nil,
		"Proxy address or CIDR whose X-Forwarded-For/X-Real-IP headers are trusted (repeatable)")
	fs.BoolVar(&c.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&c.SelfConfirmPayments, "self-confirm-payments", false,
		"Serve GET /payment/{id}/authorize that marks a payment paid without a payment provider (demo only)")
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if c.LicenseKeyFile == "" {
		errs = append(errs, errors.New("license-key is required"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("token-ttl must not be negative"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate-limit must not be negative"))
	}
	if _, err := middleware.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
