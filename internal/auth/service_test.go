package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raksha-app/raksha/internal/apperr"
	"github.com/raksha-app/raksha/internal/config"
	"github.com/raksha-app/raksha/internal/identity"
)

func newTestService(t *testing.T) (*Service, *identity.Service) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	cfg := config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}
	return NewService(cfg, repo), identity.NewService(repo)
}

func TestIssueAndAuthenticate(t *testing.T) {
	svc, ids := newTestService(t)
	ctx := context.Background()

	user, err := ids.Register(ctx, identity.Credentials{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s, got %d", token.ExpiresIn)
	}

	got, err := svc.Authenticate(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	svc, ids := newTestService(t)
	ctx := context.Background()

	user, _ := ids.Register(ctx, identity.Credentials{Username: "alice", Password: "pw123"})
	token, _ := svc.Issue(user)

	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token.AccessToken); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc, ids := newTestService(t)
	ctx := context.Background()
	user, _ := ids.Register(ctx, identity.Credentials{Username: "alice", Password: "pw123"})

	forged, err := signHS256([]byte("other-secret"), user.ID, 0, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticateRejectsExpired(t *testing.T) {
	svc, ids := newTestService(t)
	ctx := context.Background()
	user, _ := ids.Register(ctx, identity.Credentials{Username: "alice", Password: "pw123"})

	expired, _ := signHS256([]byte("test-secret"), user.ID, 0, time.Now().Add(-2*time.Hour), time.Hour)
	if _, err := svc.Authenticate(ctx, expired); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutUnknownUserIsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Logout(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := apperr.Status(err); got != 401 {
		t.Fatalf("expected 401, got %d", got)
	}
}
