package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/otpgate/otpgate/internal/auth"
)

// RegisterAuthRoutes wires the signup/login/OTP endpoints at the root path,
// matching the public API clients already integrate against.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/verify-email-otp", h.VerifyEmailOTP)
	r.Post("/verify-phone-otp", h.VerifyPhoneOTP)
	r.Post("/save-phone", h.SavePhone)
	r.Post("/send-phone-otp", h.SendPhoneOTP)
}
