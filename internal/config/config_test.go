package config

import (
	"testing"
	"time"
)

func TestLoadDevDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OTPExpiry != 5*time.Minute {
		t.Fatalf("expected 5m otp expiry, got %s", cfg.OTPExpiry)
	}
	if cfg.OTPSingleUse {
		t.Fatal("expected otp reuse to be allowed by default")
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected dev jwt secret fallback")
	}
	if cfg.IDVerifySentinel != "123456789012" {
		t.Fatalf("unexpected sentinel %q", cfg.IDVerifySentinel)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "s3cret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadDurationForms(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("OTP_EXPIRY_SECONDS", "90")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("OTP_SINGLE_USE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OTPExpiry != 90*time.Second {
		t.Fatalf("expected 90s, got %s", cfg.OTPExpiry)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownPeriod)
	}
	if !cfg.OTPSingleUse {
		t.Fatal("expected single-use mode")
	}
}

func TestLoadRejectsBadPassRate(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("IDVERIFY_PASS_RATE", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected pass rate validation error")
	}
}
