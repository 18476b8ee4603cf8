package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/alert"
)

// RegisterAlertRoutes wires outbound messaging. Both endpoints honour an
// Idempotency-Key so a client retry does not resend.
func RegisterAlertRoutes(r fiber.Router, h *alert.Handler, idempotent fiber.Handler) {
	r.Post("/send-message", idempotent, h.SendMessage)
	r.Post("/sos-alert", idempotent, h.SOS)
}
