package push

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository errors.
var (
	ErrNotFound = errors.New("push subscription not found")
)

// Repository defines the interface for push subscription persistence.
type Repository interface {
	// List returns all registered subscriptions.
	List(ctx context.Context) ([]Subscription, error)

	// Save registers a subscription, replacing any existing registration
	// for the same endpoint.
	Save(ctx context.Context, sub *Subscription) error

	// DeleteByEndpoint removes the registration for an endpoint. Used by
	// the dispatcher when the push service reports the endpoint gone.
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription // keyed by endpoint
	nextID int64
}

// NewInMemoryRepository creates an empty in-memory subscription repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		subs:   make(map[string]*Subscription),
		nextID: 1,
	}
}

// List returns all registered subscriptions ordered by ID.
func (r *InMemoryRepository) List(_ context.Context) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, *sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save registers a subscription, replacing keys on endpoint conflict.
func (r *InMemoryRepository) Save(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.subs[sub.Endpoint]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.ID = r.nextID
		r.nextID++
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = time.Now()
		}
	}
	c := *sub
	r.subs[sub.Endpoint] = &c
	return nil
}

// DeleteByEndpoint removes the registration for an endpoint.
func (r *InMemoryRepository) DeleteByEndpoint(_ context.Context, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[endpoint]; !ok {
		return ErrNotFound
	}
	delete(r.subs, endpoint)
	return nil
}
