package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Validation errors.
var (
	ErrTitleRequired    = errors.New("title is required")
	ErrScheduleRequired = errors.New("scheduled time is required")
	ErrInvalidPriority  = errors.New("invalid priority")
)

// Input holds the editable fields of a reminder.
type Input struct {
	Title       string
	Message     string
	ScheduledAt time.Time
	Repeat      Repeat
	Priority    Priority
}

func (in *Input) validate() error {
	if in.Title == "" {
		return ErrTitleRequired
	}
	if in.ScheduledAt.IsZero() {
		return ErrScheduleRequired
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	if in.Repeat.Kind == "" {
		in.Repeat = RepeatOnce()
	}
	return nil
}

// Service provides reminder management on top of a Repository.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new reminder service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns all reminders ordered by scheduled time.
func (s *Service) List(ctx context.Context) ([]Reminder, error) {
	return s.repo.List(ctx)
}

// Get retrieves a single reminder.
func (s *Service) Get(ctx context.Context, id int64) (*Reminder, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new reminder.
func (s *Service) Create(ctx context.Context, in Input) (*Reminder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rem := &Reminder{
		Title:       in.Title,
		Message:     in.Message,
		ScheduledAt: in.ScheduledAt,
		Repeat:      in.Repeat,
		Priority:    in.Priority,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("reminder_id", rem.ID).
		Time("scheduled_at", rem.ScheduledAt).
		Str("repeat", rem.Repeat.String()).
		Msg("reminder created")
	return rem, nil
}

// Update replaces the editable fields of a reminder. Any edit re-arms the
// reminder: the delivered flag is always reset to false.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Reminder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Message = in.Message
	existing.ScheduledAt = in.ScheduledAt
	existing.Repeat = in.Repeat
	existing.Priority = in.Priority
	existing.Delivered = false

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a reminder.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
