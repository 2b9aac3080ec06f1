// Package handler provides HTTP handlers for the Remindful API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/remindful/remindful/internal/api/models"
	"github.com/remindful/remindful/internal/api/response"
	"github.com/remindful/remindful/internal/reminder"
)

// ReminderHandler handles the reminder CRUD endpoints.
type ReminderHandler struct {
	service *reminder.Service
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(service *reminder.Service) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// List handles GET /api/reminders - all reminders, ascending by scheduled time.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list reminders")
		return
	}

	out := make([]models.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, toAPIReminder(rem))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/reminders.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	in, fieldErrs := reminderInput(input)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid reminder payload", fieldErrs)
		return
	}

	rem, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	location := fmt.Sprintf("/api/reminders/%d", rem.ID)
	response.Created(w, r, location, toAPIReminder(*rem))
}

// Update handles PUT /api/reminders/{id} - full replace of editable fields.
// Any edit re-arms the reminder.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid reminder id", nil)
		return
	}

	var input models.ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	in, fieldErrs := reminderInput(input)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid reminder payload", fieldErrs)
		return
	}

	rem, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIReminder(*rem))
}

// Delete handles DELETE /api/reminders/{id}.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid reminder id", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// reminderInput validates field presence and converts the wire shape into a
// service input. Missing required fields are reported together.
func reminderInput(input models.ReminderRequest) (reminder.Input, []models.FieldError) {
	var fieldErrs []models.FieldError
	if input.Title == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "title", Message: "title is required"})
	}
	if input.Datetime == nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "datetime", Message: "datetime is required"})
	}
	if len(fieldErrs) > 0 {
		return reminder.Input{}, fieldErrs
	}

	repeat, err := reminder.ParseRepeat(input.Repeat)
	if err != nil {
		return reminder.Input{}, []models.FieldError{{Field: "repeat", Message: err.Error()}}
	}

	return reminder.Input{
		Title:       input.Title,
		Message:     input.Message,
		ScheduledAt: input.Datetime.Time(),
		Repeat:      repeat,
		Priority:    reminder.Priority(input.Priority),
	}, nil
}

func (h *ReminderHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reminder.ErrNotFound):
		response.NotFound(w, r, "reminder not found")
	case errors.Is(err, reminder.ErrTitleRequired),
		errors.Is(err, reminder.ErrScheduleRequired),
		errors.Is(err, reminder.ErrInvalidPriority),
		errors.Is(err, reminder.ErrInvalidRepeatSpec):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		response.InternalError(w, r, "reminder operation failed")
	}
}

func toAPIReminder(rem reminder.Reminder) models.Reminder {
	return models.Reminder{
		ID:        rem.ID,
		Title:     rem.Title,
		Message:   rem.Message,
		Datetime:  models.ScheduleTime(rem.ScheduledAt),
		Repeat:    rem.Repeat.String(),
		Priority:  string(rem.Priority),
		Delivered: rem.Delivered,
		CreatedAt: models.Timestamp(rem.CreatedAt),
	}
}
