package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/dashboard"
)

func RegisterDashboardRoutes(r fiber.Router, h *dashboard.Handler) {
	r.Get("/dashboard", h.Get)
	r.Put("/dashboard", h.Update)
}
