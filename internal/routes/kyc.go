package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/onboarding"
)

// RegisterKYCRoutes wires phone binding, OTP and ID verification.
func RegisterKYCRoutes(r fiber.Router, h *onboarding.Handler, otpLimiter fiber.Handler) {
	r.Post("/update-phone", h.BindPhone)
	r.Post("/request-otp", otpLimiter, h.RequestOTP)
	r.Post("/aadhar-verify", h.VerifyIdentity)
}
