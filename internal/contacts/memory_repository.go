package contacts

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewMemoryRepository builds an in-memory contact store.
func NewMemoryRepository() Repository {
	return &memoryRepository{contacts: make(map[string]Contact)}
}

func (r *memoryRepository) Create(_ context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[c.ID] = c
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, userID, id string) (Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) Update(_ context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return ErrNotFound
	}
	r.contacts[c.ID] = c
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}
