package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/thoughtbook/pkg/api"
)

// UpdateHandler отдает манифест последней версии клиента
type UpdateHandler struct {
	logger   *slog.Logger
	manifest api.UpdateManifest
}

// NewUpdateHandler создает handler манифеста
func NewUpdateHandler(logger *slog.Logger, manifest api.UpdateManifest) *UpdateHandler {
	return &UpdateHandler{logger: logger, manifest: manifest}
}

// Manifest обрабатывает GET /update.json
func (h *UpdateHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, h.manifest, http.StatusOK)
}
