package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
	"github.com/iudanet/thoughtbook/internal/validation"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// FeedbackHandler принимает отзывы пользователей
type FeedbackHandler struct {
	logger *slog.Logger
	store  storage.FeedbackStorage
}

// NewFeedbackHandler создает handler отзывов
func NewFeedbackHandler(logger *slog.Logger, store storage.FeedbackStorage) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, store: store}
}

// Submit обрабатывает POST /feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode feedback", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Проверка обязательных полей
	if strings.TrimSpace(req.AppName) == "" {
		sendError(h.logger, w, "app_name is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserFeedback) == "" {
		sendError(h.logger, w, "user_feedback is required", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.FollowUp); err != nil {
		sendError(h.logger, w, "follow_up: "+err.Error(), http.StatusBadRequest)
		return
	}

	fb := &models.StoredFeedback{
		Feedback: models.Feedback{
			AppName:      req.AppName,
			UserName:     req.UserName,
			FollowUp:     req.FollowUp,
			UserFeedback: req.UserFeedback,
			Timestamp:    req.Timestamp,
			UserAppLog:   req.UserAppLog,
		},
		ReceivedAt: time.Now().UTC(),
	}

	id, err := h.store.SaveFeedback(ctx, fb)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save feedback", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "feedback received", slog.Int64("id", id))

	sendJSON(h.logger, w, api.FeedbackResponse{
		Message: "Feedback received",
		ID:      id,
	}, http.StatusOK)
}
