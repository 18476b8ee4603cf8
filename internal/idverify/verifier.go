// Package idverify decides whether a national ID number is genuine.
package idverify

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// DefaultSentinel always verifies; demos and tests rely on it.
	DefaultSentinel = "123456789012"
	// DefaultPassRate is the approval probability for every other number.
	DefaultPassRate = 0.7
)

// Verifier checks a national ID number against an external authority.
type Verifier interface {
	Verify(ctx context.Context, idNumber string) (bool, error)
}

// Simulated stands in for the external registry: the sentinel passes, other
// numbers pass with probability passRate. It has no side effects.
type Simulated struct {
	sentinel string
	passRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated builds a Simulated verifier seeded from the clock.
func NewSimulated(sentinel string, passRate float64) *Simulated {
	seed := uint64(time.Now().UnixNano())
	return NewSimulatedWithSource(sentinel, passRate, rand.NewPCG(seed, seed>>1|1))
}

// NewSimulatedWithSource builds a Simulated verifier over src, which makes
// the random draws reproducible.
func NewSimulatedWithSource(sentinel string, passRate float64, src rand.Source) *Simulated {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &Simulated{sentinel: sentinel, passRate: passRate, rng: rand.New(src)}
}

// Verify reports the decision synchronously.
func (s *Simulated) Verify(_ context.Context, idNumber string) (bool, error) {
	if idNumber == s.sentinel {
		return true, nil
	}
	s.mu.Lock()
	draw := s.rng.Float64()
	s.mu.Unlock()
	return draw < s.passRate, nil
}

// Func adapts a plain function to Verifier.
type Func func(ctx context.Context, idNumber string) (bool, error)

func (f Func) Verify(ctx context.Context, idNumber string) (bool, error) {
	return f(ctx, idNumber)
}
