package dashboard

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the dashboard endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type updateRequest struct {
	WelcomeMessage *string `json:"welcome_message"`
}

func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	d, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(d)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	d, err := h.service.Update(c.UserContext(), uid, req.WelcomeMessage)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(d)
}
