package otp

import (
	"context"
	"time"
)

// Entry is the live code for one phone number. Re-issuing overwrites it.
type Entry struct {
	Phone    string    `json:"phone"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Verified bool      `json:"verified"`
}

// Store holds at most one Entry per phone number.
type Store interface {
	// Put overwrites any existing entry for phone unconditionally.
	Put(ctx context.Context, phone string, entry Entry) error
	// Get reports false when no entry exists for phone.
	Get(ctx context.Context, phone string) (Entry, bool, error)
}
