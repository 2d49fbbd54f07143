package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/server/handlers"
	"github.com/iudanet/thoughtbook/internal/server/license"
	"github.com/iudanet/thoughtbook/internal/server/middleware"
	"github.com/iudanet/thoughtbook/internal/server/storage/sqlite"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// ShutdownTimeout время на завершение активных запросов
const ShutdownTimeout = 10 * time.Second

// Run запускает сервер и блокирует до отмены ctx.
// Если ready не nil, в него передается адрес, на котором слушает сервер.
func Run(ctx context.Context, cfg Config, logger *slog.Logger, version string, ready chan<- string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	signer, err := license.LoadSigner(cfg.LicenseKeyFile)
	if err != nil {
		return err
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		logger.Warn("jwt-secret not set, payment tokens will not survive a restart")
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.SelfConfirmPayments {
		logger.Warn("self-confirm-payments enabled, anyone with a payment link can confirm it")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return err
		}
		limiter = middleware.NewRateLimiter(cfg.RateLimit, DefaultRateWindow, proxies...)
		go limiter.RunCleanup(ctx)
	}

	router := NewRouter(Deps{
		Storage: store,
		Issuer:  signer,
		Logger:  logger,
		Limiter: limiter,
		Manifest: api.UpdateManifest{
			LatestVersion: cfg.LatestVersion,
			URL:           cfg.DownloadURL,
			Notes:         cfg.Notes,
		},
		JWT:     handlers.JWTConfig{Secret: secret, TokenTTL: cfg.TokenTTL},
		Version: version,
		Price:   config.PremiumPrice,

		SelfConfirmPayments: cfg.SelfConfirmPayments,
	})

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	logger.Info("server started", "addr", ln.Addr().String(), "version", version)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
