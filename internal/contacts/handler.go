package contacts

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the emergency contact endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type contactRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return err
	}
	if list == nil {
		list = []Contact{}
	}
	return c.Status(http.StatusOK).JSON(list)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	contact, err := h.service.Create(c.UserContext(), uid, Input{Name: deref(req.Name), PhoneNumber: deref(req.PhoneNumber)})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(contact)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	contact, err := h.service.Get(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.Status(http.StatusOK).JSON(contact)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	contact, err := h.service.Update(c.UserContext(), uid, c.Params("id"), Patch{Name: req.Name, PhoneNumber: req.PhoneNumber})
	if err != nil {
		return mapErr(err)
	}
	return c.Status(http.StatusOK).JSON(contact)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if err := h.service.Delete(c.UserContext(), uid, c.Params("id")); err != nil {
		return mapErr(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func mapErr(err error) error {
	if errors.Is(err, ErrInvalidID) {
		return fiber.NewError(http.StatusBadRequest, "invalid contact id")
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
