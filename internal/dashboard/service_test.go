package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raksha-app/raksha/internal/apperr"
)

func TestProvisionAndUpdate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	d, err := svc.Provision(ctx, "u1")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if d.WelcomeMessage != DefaultWelcome {
		t.Fatalf("expected default welcome, got %q", d.WelcomeMessage)
	}

	msg := "Stay safe, alice"
	d, err = svc.Update(ctx, "u1", &msg)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.WelcomeMessage != msg {
		t.Fatalf("expected %q, got %q", msg, d.WelcomeMessage)
	}

	d, err = svc.Update(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if d.WelcomeMessage != msg {
		t.Fatalf("partial update changed message to %q", d.WelcomeMessage)
	}
}

func TestUpdateRejectsLongMessage(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	_, _ = svc.Provision(ctx, "u1")

	long := strings.Repeat("x", maxWelcomeLen+1)
	_, err := svc.Update(ctx, "u1", &long)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields["welcome_message"]) == 0 {
		t.Fatalf("expected welcome_message field error, got %+v", ve.Fields)
	}
}

func TestGetMissingDashboard(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
