package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// LicenseIssuer подписывает лицензии
type LicenseIssuer interface {
	Issue(payment *models.Payment, deviceID string) (*models.IssuedLicense, error)
}

// LicenseHandler выдает лицензии по проведенным оплатам
type LicenseHandler struct {
	logger   *slog.Logger
	payments storage.PaymentStorage
	licenses storage.LicenseStorage
	issuer   LicenseIssuer
}

// NewLicenseHandler создает handler лицензий
func NewLicenseHandler(logger *slog.Logger, payments storage.PaymentStorage, licenses storage.LicenseStorage, issuer LicenseIssuer) *LicenseHandler {
	return &LicenseHandler{
		logger:   logger,
		payments: payments,
		licenses: licenses,
		issuer:   issuer,
	}
}

// Issue обрабатывает POST /license. Требует токен оплаты (см. middleware.PaymentAuth).
// Повторный запрос с того же устройства возвращает уже выданную лицензию.
func (h *LicenseHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paymentID, ok := GetPaymentID(ctx)
	if !ok {
		sendError(h.logger, w, "missing payment token", http.StatusUnauthorized)
		return
	}

	var req api.LicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	payment, err := h.payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			sendError(h.logger, w, "payment not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get payment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if payment.Status != models.PaymentPaid {
		h.logger.InfoContext(ctx, "license requested for unpaid payment", slog.String("payment_id", paymentID))
		sendError(h.logger, w, "payment is not completed", http.StatusPaymentRequired)
		return
	}

	lic, err := h.licenses.GetLicense(ctx, paymentID, req.DeviceID)
	switch {
	case err == nil:
		h.logger.DebugContext(ctx, "returning issued license", slog.String("payment_id", paymentID))
	case errors.Is(err, storage.ErrLicenseNotFound):
		lic, err = h.issuer.Issue(payment, req.DeviceID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to issue license", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		if err := h.licenses.SaveLicense(ctx, lic); err != nil {
			h.logger.ErrorContext(ctx, "failed to save license", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		h.logger.InfoContext(ctx, "license issued",
			slog.String("payment_id", paymentID),
			slog.String("device_id", req.DeviceID))
	default:
		h.logger.ErrorContext(ctx, "failed to get license", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.LicenseResponse{
		LicenseData: lic.LicenseData,
		LicenseKey:  lic.LicenseKey,
	}, http.StatusOK)
}
