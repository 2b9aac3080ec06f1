package handler

import (
	"encoding/json"
	"net/http"

	"github.com/remindful/remindful/internal/api/models"
	"github.com/remindful/remindful/internal/api/response"
	"github.com/remindful/remindful/internal/push"
)

// PushHandler handles push subscription registration.
type PushHandler struct {
	subs           push.Repository
	vapidPublicKey string
}

// NewPushHandler creates a new PushHandler.
func NewPushHandler(subs push.Repository, vapidPublicKey string) *PushHandler {
	return &PushHandler{subs: subs, vapidPublicKey: vapidPublicKey}
}

// Subscribe handles POST /api/push/subscribe - register a browser
// subscription, replacing any previous registration for the same endpoint.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var input models.PushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrs []models.FieldError
	if input.Endpoint == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "endpoint", Message: "endpoint is required"})
	}
	if input.Keys.P256dh == "" || input.Keys.Auth == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "keys", Message: "p256dh and auth keys are required"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid subscription", fieldErrs)
		return
	}

	sub := &push.Subscription{
		Endpoint: input.Endpoint,
		P256dh:   input.Keys.P256dh,
		Auth:     input.Keys.Auth,
	}
	if err := h.subs.Save(r.Context(), sub); err != nil {
		response.InternalError(w, r, "failed to save subscription")
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]bool{"success": true})
}

// VAPIDKey handles GET /api/push/vapid-key - the public key the client
// needs for subscription setup.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.VAPIDKey{Key: h.vapidPublicKey})
}
