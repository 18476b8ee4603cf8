package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/auth"
	"github.com/raksha-app/raksha/internal/onboarding"
)

// RegisterAuthRoutes wires the public account endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, reg *onboarding.Handler, rateLimiter fiber.Handler) {
	r.Post("/register", reg.Register)
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, h.Login)
	} else {
		r.Post("/login", h.Login)
	}
}
