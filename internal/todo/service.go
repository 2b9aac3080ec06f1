package todo

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/reminder"
)

// Validation errors.
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrNoFields        = errors.New("no fields to update")
	ErrNoItems         = errors.New("no items to reorder")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Service provides todo management on top of a Repository.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new todo service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns all todos in display order.
func (s *Service) List(ctx context.Context) ([]Todo, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new todo.
func (s *Service) Create(ctx context.Context, title string, priority reminder.Priority) (*Todo, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if priority == "" {
		priority = reminder.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	td := &Todo{Title: title, Priority: priority}
	if err := s.repo.Create(ctx, td); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("todo_id", td.ID).Msg("todo created")
	return td, nil
}

// Apply performs a partial update. An update with no fields is rejected.
func (s *Service) Apply(ctx context.Context, id int64, upd Update) (*Todo, error) {
	if upd.Empty() {
		return nil, ErrNoFields
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	return s.repo.Apply(ctx, id, upd)
}

// Delete removes a todo.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Reorder assigns new sort orders to a batch of todos.
func (s *Service) Reorder(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	return s.repo.Reorder(ctx, items)
}
