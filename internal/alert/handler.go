package alert

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	if _, err := h.service.SendMessage(c.UserContext(), uid, req.Message); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Message sent successfully."})
}

// SOS reports only the aggregate outcome to the caller.
func (h *Handler) SOS(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	username, _ := c.Locals("username").(string)
	report, err := h.service.TriggerSOS(c.UserContext(), uid, username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":  "SOS alert sent to all emergency contacts.",
		"notified": len(report.Deliveries),
	})
}
