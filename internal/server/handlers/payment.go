package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
	"github.com/iudanet/thoughtbook/internal/validation"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// PaymentHandler обрабатывает создание и подтверждение оплат
type PaymentHandler struct {
	logger      *slog.Logger
	payments    storage.PaymentStorage
	jwtConfig   JWTConfig
	price       int64
	selfConfirm bool
}

// NewPaymentHandler создает handler оплат. price это ожидаемая сумма
// в минимальных единицах валюты.
//
// selfConfirm включает демо подтверждение без платежного провайдера:
// GET /payment/{id}/authorize помечает оплату проведенной, и ссылка на него
// возвращается покупателю. Без него оплату проводит только провайдер
// через PaymentStorage.MarkPaid.
func NewPaymentHandler(logger *slog.Logger, payments storage.PaymentStorage, jwtConfig JWTConfig, price int64, selfConfirm bool) *PaymentHandler {
	return &PaymentHandler{
		logger:      logger,
		payments:    payments,
		jwtConfig:   jwtConfig,
		price:       price,
		selfConfirm: selfConfirm,
	}
}

// Create обрабатывает POST /payment
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode payment request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount != h.price {
		sendError(h.logger, w, fmt.Sprintf("amount must be %d", h.price), http.StatusBadRequest)
		return
	}

	payment := &models.Payment{
		Reference: uuid.New().String(),
		Email:     req.Email,
		Amount:    req.Amount,
		Status:    models.PaymentPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.payments.CreatePayment(ctx, payment); err != nil {
		h.logger.ErrorContext(ctx, "failed to create payment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := GeneratePaymentToken(h.jwtConfig, payment.Reference, payment.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate payment token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "payment created", slog.String("payment_id", payment.Reference))

	data := api.PaymentData{Reference: token}
	if h.selfConfirm {
		data.AuthorizationURL = fmt.Sprintf("%s/payment/%s/authorize", baseURL(r), payment.Reference)
	}

	sendJSON(h.logger, w, api.PaymentResponse{Data: data}, http.StatusOK)
}

// Authorize обрабатывает GET /payment/{id}/authorize.
// Демо страница подтверждения: помечает оплату проведенной без проверки,
// поэтому отвечает 404, если selfConfirm выключен.
func (h *PaymentHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.selfConfirm {
		sendError(h.logger, w, "not found", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.payments.MarkPaid(ctx, id); err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			sendError(h.logger, w, "payment not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to confirm payment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "payment confirmed", slog.String("payment_id", id))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Payment confirmed. Return to Thought Book and finish the upgrade.\n"))
}

// baseURL восстанавливает адрес сервера из запроса
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
