package otp

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Entries never leave on their own;
// run Prune or RunJanitor to bound growth.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Put(_ context.Context, phone string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = entry
	return nil
}

func (s *MemoryStore) Get(_ context.Context, phone string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[phone]
	return entry, ok, nil
}

// Prune drops entries issued before cutoff and returns how many were removed.
func (s *MemoryStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int
	for phone, entry := range s.entries {
		if entry.IssuedAt.Before(cutoff) {
			delete(s.entries, phone)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunJanitor prunes entries older than ttl every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval, ttl time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Prune(now.Add(-ttl)); n > 0 && logger != nil {
				logger.Debug("otp entries pruned", slog.Int("count", n))
			}
		}
	}
}
