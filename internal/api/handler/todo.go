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
	"github.com/remindful/remindful/internal/todo"
)

// TodoHandler handles the todo CRUD and reorder endpoints.
type TodoHandler struct {
	service *todo.Service
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service *todo.Service) *TodoHandler {
	return &TodoHandler{service: service}
}

// List handles GET /api/todos - incomplete first, then by sort order.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list todos")
		return
	}

	out := make([]models.Todo, 0, len(todos))
	for _, td := range todos {
		out = append(out, toAPITodo(td))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.TodoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Title == "" {
		response.BadRequest(w, r, "title is required",
			[]models.FieldError{{Field: "title", Message: "title is required"}})
		return
	}

	td, err := h.service.Create(r.Context(), input.Title, reminder.Priority(input.Priority))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	location := fmt.Sprintf("/api/todos/%d", td.ID)
	response.Created(w, r, location, toAPITodo(*td))
}

// Update handles PUT /api/todos/{id} - partial update.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid todo id", nil)
		return
	}

	var input models.TodoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	upd := todo.Update{
		Title:     input.Title,
		Completed: input.Completed,
		SortOrder: input.SortOrder,
	}
	if input.Priority != nil {
		p := reminder.Priority(*input.Priority)
		upd.Priority = &p
	}

	td, err := h.service.Apply(r.Context(), id, upd)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPITodo(*td))
}

// Delete handles DELETE /api/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid todo id", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// Reorder handles PUT /api/todos/reorder/batch.
func (h *TodoHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var input models.TodoReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	items := make([]todo.ReorderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, todo.ReorderItem{ID: item.ID, SortOrder: item.SortOrder})
	}

	if err := h.service.Reorder(r.Context(), items); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *TodoHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		response.NotFound(w, r, "todo not found")
	case errors.Is(err, todo.ErrTitleRequired),
		errors.Is(err, todo.ErrNoFields),
		errors.Is(err, todo.ErrNoItems),
		errors.Is(err, todo.ErrInvalidPriority):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		response.InternalError(w, r, "todo operation failed")
	}
}

func toAPITodo(td todo.Todo) models.Todo {
	return models.Todo{
		ID:        td.ID,
		Title:     td.Title,
		Completed: td.Completed,
		Priority:  string(td.Priority),
		SortOrder: td.SortOrder,
		CreatedAt: models.Timestamp(td.CreatedAt),
	}
}
