package todo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository errors.
var (
	ErrNotFound = errors.New("todo not found")
)

// Repository defines the interface for todo persistence.
type Repository interface {
	// List returns all todos: incomplete before complete, then by sort
	// order ascending, then newest first.
	List(ctx context.Context) ([]Todo, error)

	// Get retrieves a todo by ID.
	Get(ctx context.Context, id int64) (*Todo, error)

	// Create inserts a new todo and fills in its ID and CreatedAt.
	Create(ctx context.Context, td *Todo) error

	// Apply performs a partial update.
	Apply(ctx context.Context, id int64, upd Update) (*Todo, error)

	// Delete removes a todo.
	Delete(ctx context.Context, id int64) error

	// Reorder assigns new sort orders to the given todos in one batch.
	Reorder(ctx context.Context, items []ReorderItem) error
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	todos  map[int64]*Todo
	nextID int64
}

// NewInMemoryRepository creates an empty in-memory todo repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		todos:  make(map[int64]*Todo),
		nextID: 1,
	}
}

// List returns all todos in display order.
func (r *InMemoryRepository) List(_ context.Context) ([]Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Todo, 0, len(r.todos))
	for _, td := range r.todos {
		out = append(out, *td)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get retrieves a todo by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	td, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *td
	return &c, nil
}

// Create inserts a new todo.
func (r *InMemoryRepository) Create(_ context.Context, td *Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	td.ID = r.nextID
	r.nextID++
	if td.CreatedAt.IsZero() {
		td.CreatedAt = time.Now()
	}
	c := *td
	r.todos[td.ID] = &c
	return nil
}

// Apply performs a partial update.
func (r *InMemoryRepository) Apply(_ context.Context, id int64, upd Update) (*Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	td, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		td.Title = *upd.Title
	}
	if upd.Completed != nil {
		td.Completed = *upd.Completed
	}
	if upd.Priority != nil {
		td.Priority = *upd.Priority
	}
	if upd.SortOrder != nil {
		td.SortOrder = *upd.SortOrder
	}
	c := *td
	return &c, nil
}

// Delete removes a todo.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

// Reorder assigns new sort orders. Unknown IDs are skipped, matching the
// batch UPDATE semantics of the SQL implementation.
func (r *InMemoryRepository) Reorder(_ context.Context, items []ReorderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if td, ok := r.todos[item.ID]; ok {
			td.SortOrder = item.SortOrder
		}
	}
	return nil
}
