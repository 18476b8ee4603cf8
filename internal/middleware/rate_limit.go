package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// KeyFunc picks the bucket a request counts against. An empty key falls
// back to the client IP.
type KeyFunc func(c *fiber.Ctx) string

// RateLimit allows maxPerMin requests per key per minute using Redis INCR.
// It is a no-op without Redis and fails open on cache errors.
func RateLimit(cache *redis.Client, name string, maxPerMin int, key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || maxPerMin <= 0 {
			return c.Next()
		}
		id := ""
		if key != nil {
			id = strings.TrimSpace(key(c))
		}
		if id == "" {
			id = c.IP()
		}
		bucket := "rl:" + name + ":" + id
		cnt, err := cache.Incr(c.UserContext(), bucket).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), bucket, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}

// ByUsername keys on the username field of a JSON body.
func ByUsername(c *fiber.Ctx) string {
	var req struct {
		Username string `json:"username"`
	}
	_ = c.BodyParser(&req)
	return req.Username
}

// ByUser keys on the authenticated user id.
func ByUser(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}
