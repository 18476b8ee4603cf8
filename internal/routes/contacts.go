package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/contacts"
)

func RegisterContactRoutes(r fiber.Router, h *contacts.Handler) {
	group := r.Group("/emergency-contacts")
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
