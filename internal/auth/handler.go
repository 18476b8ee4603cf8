package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/identity"
)

// Handler exposes login/logout endpoints.
type Handler struct {
	ids *identity.Service
	svc *Service
}

func NewHandler(ids *identity.Service, svc *Service) *Handler {
	return &Handler{ids: ids, svc: svc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login validates credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		return err
	}
	token, err := h.svc.Issue(user)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		Message:   "Login successful.",
		UserID:    user.ID,
		Token:     token.AccessToken,
		ExpiresIn: token.ExpiresIn,
	})
}

// Logout invalidates every token issued to the caller so far.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals(LocalUserID).(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logged out."})
}

// Locals keys set by the JWT middleware.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)
