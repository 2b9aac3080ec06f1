package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository errors.
var (
	ErrNotFound = errors.New("reminder not found")
)

// Repository defines the interface for reminder persistence.
type Repository interface {
	// List returns all reminders ordered by scheduled time ascending.
	List(ctx context.Context) ([]Reminder, error)

	// Get retrieves a reminder by ID.
	Get(ctx context.Context, id int64) (*Reminder, error)

	// Create inserts a new reminder and fills in its ID and CreatedAt.
	Create(ctx context.Context, rem *Reminder) error

	// Update replaces the editable fields of an existing reminder,
	// including the delivered flag.
	Update(ctx context.Context, rem *Reminder) error

	// Delete removes a reminder.
	Delete(ctx context.Context, id int64) error

	// ListDue returns reminders with scheduled time <= now (inclusive) and
	// delivered = false, ordered by scheduled time ascending, ties broken
	// by oldest ID first. Read-only.
	ListDue(ctx context.Context, now time.Time) ([]Reminder, error)

	// MarkDelivered sets the delivered flag after a one-shot reminder fires.
	MarkDelivered(ctx context.Context, id int64) error

	// Reschedule advances a repeating reminder to its next occurrence,
	// leaving the delivered flag untouched.
	Reschedule(ctx context.Context, id int64, next time.Time) error
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests and as a reference implementation of the query semantics.
type InMemoryRepository struct {
	mu        sync.RWMutex
	reminders map[int64]*Reminder
	nextID    int64
}

// NewInMemoryRepository creates an empty in-memory reminder repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reminders: make(map[int64]*Reminder),
		nextID:    1,
	}
}

// List returns all reminders ordered by scheduled time ascending.
func (r *InMemoryRepository) List(_ context.Context) ([]Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Reminder, 0, len(r.reminders))
	for _, rem := range r.reminders {
		out = append(out, *rem)
	}
	sortBySchedule(out)
	return out, nil
}

// Get retrieves a reminder by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.reminders[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *rem
	return &c, nil
}

// Create inserts a new reminder.
func (r *InMemoryRepository) Create(_ context.Context, rem *Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem.ID = r.nextID
	r.nextID++
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = time.Now()
	}
	c := *rem
	r.reminders[rem.ID] = &c
	return nil
}

// Update replaces an existing reminder.
func (r *InMemoryRepository) Update(_ context.Context, rem *Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[rem.ID]
	if !ok {
		return ErrNotFound
	}
	rem.CreatedAt = existing.CreatedAt
	c := *rem
	r.reminders[rem.ID] = &c
	return nil
}

// Delete removes a reminder.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reminders[id]; !ok {
		return ErrNotFound
	}
	delete(r.reminders, id)
	return nil
}

// ListDue returns undelivered reminders whose scheduled time has passed.
func (r *InMemoryRepository) ListDue(_ context.Context, now time.Time) ([]Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Reminder
	for _, rem := range r.reminders {
		if rem.Delivered {
			continue
		}
		// Inclusive boundary: a reminder scheduled exactly at now is due.
		if !rem.ScheduledAt.After(now) {
			out = append(out, *rem)
		}
	}
	sortBySchedule(out)
	return out, nil
}

// MarkDelivered sets the delivered flag.
func (r *InMemoryRepository) MarkDelivered(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.reminders[id]
	if !ok {
		return ErrNotFound
	}
	rem.Delivered = true
	return nil
}

// Reschedule advances a reminder to its next occurrence.
func (r *InMemoryRepository) Reschedule(_ context.Context, id int64, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.reminders[id]
	if !ok {
		return ErrNotFound
	}
	rem.ScheduledAt = next
	return nil
}

func sortBySchedule(rs []Reminder) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].ScheduledAt.Equal(rs[j].ScheduledAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].ScheduledAt.Before(rs[j].ScheduledAt)
	})
}
