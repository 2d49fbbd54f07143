// Package server собирает HTTP API сервера лицензий Thought Book.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/thoughtbook/internal/server/handlers"
	"github.com/iudanet/thoughtbook/internal/server/middleware"
	"github.com/iudanet/thoughtbook/internal/server/storage"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// Storage все хранилища, которые нужны серверу
type Storage interface {
	storage.PaymentStorage
	storage.FeedbackStorage
	storage.LicenseStorage
}

// Deps зависимости роутера
type Deps struct {
	Storage  Storage
	Issuer   handlers.LicenseIssuer
	Logger   *slog.Logger
	Limiter  *middleware.RateLimiter // nil отключает ограничение частоты
	Manifest api.UpdateManifest
	JWT      handlers.JWTConfig
	Version  string
	Price    int64

	// SelfConfirmPayments монтирует демо GET /payment/{id}/authorize
	SelfConfirmPayments bool
}

// DefaultRateLimit лимит запросов с одного адреса на изменяющие эндпоинты
const (
	DefaultRateLimit  = 20
	DefaultRateWindow = time.Minute
)

// NewRouter создает роутер:
//
//	GET  /health
//	GET  /update.json
//	POST /payment
//	GET  /payment/{id}/authorize   (только с SelfConfirmPayments)
//	POST /license   (Authorization: Bearer <payment token>)
//	POST /feedback
func NewRouter(d Deps) http.Handler {
	health := handlers.NewHealthHandler(d.Logger, d.Version)
	update := handlers.NewUpdateHandler(d.Logger, d.Manifest)
	payment := handlers.NewPaymentHandler(d.Logger, d.Storage, d.JWT, d.Price, d.SelfConfirmPayments)
	license := handlers.NewLicenseHandler(d.Logger, d.Storage, d.Storage, d.Issuer)
	feedback := handlers.NewFeedbackHandler(d.Logger, d.Storage)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logging(d.Logger, "/health"))

	r.Get("/health", health.Health)
	r.Get("/update.json", update.Manifest)
	if d.SelfConfirmPayments {
		r.Get("/payment/{id}/authorize", payment.Authorize)
	}

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(middleware.RateLimit(d.Limiter, d.Logger))
		}
		r.Post("/payment", payment.Create)
		r.Post("/feedback", feedback.Submit)
		r.With(middleware.PaymentAuth(d.Logger, d.JWT)).Post("/license", license.Issue)
	})

	return r
}
