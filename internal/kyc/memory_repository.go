package kyc

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepository builds an in-memory KYC store.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string]Record)}
}

func (r *memoryRepository) Create(_ context.Context, userID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := Record{UserID: userID, UpdatedAt: time.Now().UTC()}
	r.records[userID] = rec
	return rec, nil
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[userID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryRepository) SetPhone(_ context.Context, userID, phone string) (Record, error) {
	return r.update(userID, func(rec *Record) {
		if rec.PhoneNumber == phone {
			return
		}
		rec.PhoneNumber = phone
		rec.IsVerified = false
		rec.IDNumber = ""
	})
}

func (r *memoryRepository) MarkVerified(_ context.Context, userID, idNumber string) (Record, error) {
	return r.update(userID, func(rec *Record) {
		rec.IDNumber = idNumber
		rec.IsVerified = true
	})
}

func (r *memoryRepository) update(userID string, mutate func(*Record)) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	mutate(&rec)
	rec.UpdatedAt = time.Now().UTC()
	r.records[userID] = rec
	return rec, nil
}
