// Package alert sends user-initiated messages and SOS broadcasts.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raksha-app/raksha/internal/apperr"
	"github.com/raksha-app/raksha/internal/contacts"
	"github.com/raksha-app/raksha/internal/kyc"
	"github.com/raksha-app/raksha/internal/metrics"
	"github.com/raksha-app/raksha/internal/notification"
)

const sosTemplate = "Emergency Alert from %s: SOS Alert! %s needs help. Please contact them immediately."

// Delivery is the outcome for one contact.
type Delivery struct {
	ContactID string
	Name      string
	Phone     string
	Err       error
}

// Report lists every attempted SOS delivery.
type Report struct {
	Deliveries []Delivery
}

// Failed counts the deliveries that errored.
func (r Report) Failed() int {
	var n int
	for _, d := range r.Deliveries {
		if d.Err != nil {
			n++
		}
	}
	return n
}

type Service struct {
	records  kyc.Repository
	contacts contacts.Repository
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(records kyc.Repository, contactRepo contacts.Repository, notifier notification.Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, contacts: contactRepo, notifier: notifier, metrics: m, logger: logger}
}

// SendMessage delivers message to the caller's own bound phone.
func (s *Service) SendMessage(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		var ve apperr.ValidationError
		ve.Required("message", "")
		return "", ve.Err()
	}

	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, kyc.ErrRecordNotFound) {
			return "", fmt.Errorf("kyc record: %w", apperr.ErrRecordNotFound)
		}
		return "", err
	}
	if rec.PhoneNumber == "" {
		return "", apperr.ErrPhoneNotBound
	}

	err = s.notifier.Send(ctx, notification.Message{Kind: notification.KindAdhoc, Destination: rec.PhoneNumber, Body: message})
	s.count(notification.KindAdhoc, err == nil)
	if err != nil {
		s.logger.Error("message dispatch failed", slog.String("user_id", userID), slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", apperr.ErrDispatchFailure, err)
	}
	return rec.PhoneNumber, nil
}

// TriggerSOS alerts every contact of userID concurrently. With no contacts
// nothing is sent. Any failed delivery fails the call, but the report still
// lists every outcome.
func (s *Service) TriggerSOS(ctx context.Context, userID, username string) (Report, error) {
	list, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	if len(list) == 0 {
		return Report{}, apperr.ErrNoContacts
	}

	messages := make([]notification.Message, len(list))
	for i, c := range list {
		messages[i] = notification.Message{
			Kind:        notification.KindSOS,
			Destination: c.PhoneNumber,
			Body:        fmt.Sprintf(sosTemplate, c.Name, username),
		}
	}

	results := notification.Broadcast(ctx, s.notifier, messages)
	report := Report{Deliveries: make([]Delivery, len(results))}
	for i, res := range results {
		report.Deliveries[i] = Delivery{ContactID: list[i].ID, Name: list[i].Name, Phone: list[i].PhoneNumber, Err: res.Err}
		s.count(notification.KindSOS, res.Err == nil)
		if res.Err != nil {
			s.logger.Warn("sos delivery failed", slog.String("user_id", userID), slog.String("contact_id", list[i].ID), slog.Any("error", res.Err))
		}
	}

	if failed := report.Failed(); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d sos messages", apperr.ErrDispatchFailure, failed, len(list))
	}
	s.logger.Info("sos alert sent", slog.String("user_id", userID), slog.Int("contacts", len(list)))
	return report, nil
}

func (s *Service) count(kind string, ok bool) {
	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(kind, metrics.Outcome(ok)).Inc()
	}
}
