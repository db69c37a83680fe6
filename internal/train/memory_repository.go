package train

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	trains map[string]*Train
}

// NewInMemoryRepository creates a new in-memory train repository,
// optionally pre-populated with trains.
func NewInMemoryRepository(trains ...*Train) *InMemoryRepository {
	r := &InMemoryRepository{
		trains: make(map[string]*Train, len(trains)),
	}
	for _, t := range trains {
		cpy := *t
		r.trains[t.ID] = &cpy
	}
	return r
}

// FindByID retrieves a train by ID.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (*Train, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trains[id]
	if !ok {
		return nil, ErrTrainNotFound
	}

	// Return a copy
	cpy := *t
	return &cpy, nil
}

// FindActiveByDestination retrieves non-cancelled trains heading to destination.
func (r *InMemoryRepository) FindActiveByDestination(_ context.Context, destination, excludeID string) ([]*Train, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trains []*Train
	for _, t := range r.trains {
		if t.Destination != destination || t.ID == excludeID || t.IsCancelled() {
			continue
		}
		cpy := *t
		trains = append(trains, &cpy)
	}

	// Map iteration order is random; keep results stable between calls.
	sort.Slice(trains, func(i, j int) bool {
		return trains[i].ID < trains[j].ID
	})

	return trains, nil
}

// Upsert creates or replaces a train.
func (r *InMemoryRepository) Upsert(_ context.Context, t *Train) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	if cpy.UpdatedAt.IsZero() {
		cpy.UpdatedAt = time.Now()
	}
	r.trains[t.ID] = &cpy
	return nil
}

// UpdateStatus changes the status and delay of a train.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status, delayMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trains[id]
	if !ok {
		return ErrTrainNotFound
	}

	t.Status = status
	t.DelayMinutes = delayMinutes
	t.UpdatedAt = time.Now()
	return nil
}

// Ping always succeeds for the in-memory store.
func (r *InMemoryRepository) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored trains.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trains)
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
