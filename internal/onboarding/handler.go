package onboarding

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/identity"
	"github.com/raksha-app/raksha/internal/kyc"
)

// Handler exposes the registration and KYC endpoints.
type Handler struct {
	flow *Workflow
	ids  *identity.Service
}

func NewHandler(flow *Workflow, ids *identity.Service) *Handler {
	return &Handler{flow: flow, ids: ids}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type phoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type verifyRequest struct {
	AadharNumber string `json:"aadhar_number"`
	OTP          string `json:"otp"`
}

type kycResponse struct {
	UserID      string    `json:"user_id"`
	IDNumber    *string   `json:"id_number"`
	PhoneNumber *string   `json:"phone_number"`
	IsVerified  bool      `json:"is_verified"`
	State       kyc.State `json:"state"`
}

func toKYCResponse(rec kyc.Record, state kyc.State) kycResponse {
	return kycResponse{
		UserID:      rec.UserID,
		IDNumber:    optional(rec.IDNumber),
		PhoneNumber: optional(rec.PhoneNumber),
		IsVerified:  rec.IsVerified,
		State:       state,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	account, err := h.flow.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully.",
		"user_id": account.UserID,
		"token":   account.Token.AccessToken,
	})
}

func (h *Handler) BindPhone(c *fiber.Ctx) error {
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	phone, err := h.flow.BindPhone(c.UserContext(), uid, req.PhoneNumber)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "Phone number updated successfully.",
		"phone_number": phone,
	})
}

func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	phone, err := h.flow.RequestOTP(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("OTP sent to %s. Please use it for Aadhar verification.", phone),
	})
}

func (h *Handler) VerifyIdentity(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	uid, _ := c.Locals("user_id").(string)
	rec, err := h.flow.VerifyIdentity(c.UserContext(), uid, req.AadharNumber, req.OTP)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":    "Aadhar verification successful.",
		"kyc_status": toKYCResponse(rec, rec.State()),
	})
}

// Me returns the caller's profile and KYC status.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	user, err := h.ids.Get(c.UserContext(), uid)
	if err != nil {
		return err
	}
	rec, state, err := h.flow.Status(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":    user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
		"kyc_status": toKYCResponse(rec, state),
	})
}
