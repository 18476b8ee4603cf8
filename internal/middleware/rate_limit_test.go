package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestRateLimitPerKey(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/login", RateLimit(cache, "login", 2, ByUsername), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(username string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"username":"`+username+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("alice"); got != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, got)
		}
	}
	if got := send("alice"); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := send("bob"); got != fiber.StatusOK {
		t.Fatalf("other user should not be limited, got %d", got)
	}

	mr.FastForward(61 * time.Second)
	if got := send("alice"); got != fiber.StatusOK {
		t.Fatalf("window should reset, got %d", got)
	}
}

func TestRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimit(nil, "login", 1, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 got %d", resp.StatusCode)
		}
	}
}
