package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/raksha-app/raksha/internal/metrics"
	"github.com/raksha-app/raksha/internal/notification"
)

const (
	// DefaultExpiry is how long an issued code stays acceptable.
	DefaultExpiry = 5 * time.Minute

	codeMin  = 100000
	codeSpan = 900000
)

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	Expiry time.Duration
	// SingleUse rejects a code once it has been verified.
	SingleUse bool
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Service issues and checks phone verification codes.
type Service struct {
	store     Store
	notifier  notification.Notifier
	expiry    time.Duration
	singleUse bool
	logger    *slog.Logger
	metrics   *metrics.Metrics

	now      func() time.Time
	generate func() (string, error)
}

// NewService wires a Service over store. notifier may be nil, in which case
// codes are stored but never delivered.
func NewService(store Store, notifier notification.Notifier, opts Options) *Service {
	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Service{
		store:     store,
		notifier:  notifier,
		expiry:    expiry,
		singleUse: opts.SingleUse,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       time.Now,
		generate:  generateCode,
	}
}

// Expiry returns the configured validity window.
func (s *Service) Expiry() time.Duration { return s.expiry }

// Issue stores a fresh code for phone and dispatches it. Delivery failures
// are logged only; the caller gets the code regardless.
func (s *Service) Issue(ctx context.Context, phone string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	entry := Entry{Phone: phone, Code: code, IssuedAt: s.now().UTC(), Verified: false}
	if err := s.store.Put(ctx, phone, entry); err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}

	s.dispatch(ctx, phone, code)
	return code, nil
}

func (s *Service) dispatch(ctx context.Context, phone, code string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindOTP,
		Destination: phone,
		Body:        fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.expiry.Minutes())),
	})
	if err == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.OTPDispatchErrors.Inc()
	}
	if s.logger != nil {
		s.logger.Warn("otp dispatch failed", slog.String("phone", phone), slog.Any("error", err))
	}
}

// Verify checks attempt against the live code for phone within the
// configured expiry.
func (s *Service) Verify(ctx context.Context, phone, attempt string) (bool, error) {
	return s.VerifyWithin(ctx, phone, attempt, s.expiry)
}

// VerifyWithin fails closed: a missing entry, a mismatch or an entry at
// least window old all yield false. A match marks the entry verified; no
// failure counter is kept. The error is reserved for store failures.
func (s *Service) VerifyWithin(ctx context.Context, phone, attempt string, window time.Duration) (bool, error) {
	ok, err := s.check(ctx, phone, attempt, window)
	if s.metrics != nil && err == nil {
		s.metrics.OTPVerifications.WithLabelValues(metrics.Outcome(ok)).Inc()
	}
	return ok, err
}

func (s *Service) check(ctx context.Context, phone, attempt string, window time.Duration) (bool, error) {
	entry, found, err := s.store.Get(ctx, phone)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(attempt)) != 1 {
		return false, nil
	}
	if s.now().Sub(entry.IssuedAt) >= window {
		return false, nil
	}
	if s.singleUse && entry.Verified {
		return false, nil
	}

	if !entry.Verified {
		entry.Verified = true
		if err := s.store.Put(ctx, phone, entry); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Live reports whether phone has a code that Verify could still accept.
func (s *Service) Live(ctx context.Context, phone string) (bool, error) {
	entry, found, err := s.store.Get(ctx, phone)
	if err != nil || !found {
		return false, err
	}
	if s.now().Sub(entry.IssuedAt) >= s.expiry {
		return false, nil
	}
	return !(s.singleUse && entry.Verified), nil
}

// generateCode draws uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}
