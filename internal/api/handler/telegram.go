package handler

import (
	"net/http"

	"github.com/remindful/remindful/internal/api/models"
	"github.com/remindful/remindful/internal/api/response"
)

// TelegramHandler reports bot transport status to the client.
type TelegramHandler struct {
	configured bool
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(configured bool) *TelegramHandler {
	return &TelegramHandler{configured: configured}
}

// Status handles GET /api/telegram/status - whether the bot transport is
// configured, with no secrets exposed.
func (h *TelegramHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.TelegramStatus{Configured: h.configured})
}
