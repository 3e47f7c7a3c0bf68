package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/otpgate/otpgate/internal/identity"
)

// Handler exposes the signup/login/OTP endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// response is the envelope every endpoint returns. Domain failures keep a 2xx
// status with success=false; only infrastructure failures use 5xx.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// otpCode accepts the submitted code as either a JSON string or a JSON
// number, since clients send both forms.
type otpCode string

func (c *otpCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = otpCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = otpCode(n.String())
	return nil
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// Signup handles user registration.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.svc.Signup(c.UserContext(), req.Email, req.Password, req.PhoneNumber)
	switch {
	case err == nil:
		return c.JSON(response{Success: true, Message: "User registered successfully"})
	case errors.Is(err, identity.ErrUserExists):
		return c.JSON(response{Success: false, Message: "User already exists"})
	default:
		return h.serverError(c, "signup", err)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and triggers the email OTP on success.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(response{Success: true, Message: "OTP sent to your email"})
	case errors.Is(err, identity.ErrUserNotFound):
		return c.JSON(response{Success: false, Message: "User does not exist"})
	case errors.Is(err, identity.ErrIncorrectPassword):
		return c.JSON(response{Success: false, Message: "Incorrect password"})
	default:
		return h.serverError(c, "login", err)
	}
}

type verifyEmailOTPRequest struct {
	Email string  `json:"email"`
	OTP   otpCode `json:"otp"`
}

// VerifyEmailOTP redeems the email challenge issued at login.
func (h *Handler) VerifyEmailOTP(c *fiber.Ctx) error {
	var req verifyEmailOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.svc.VerifyEmailOTP(c.UserContext(), req.Email, string(req.OTP))
	if err != nil {
		return h.serverError(c, "verify email otp", err)
	}
	if !ok {
		return c.JSON(response{Success: false, Message: "Invalid Email OTP"})
	}
	return c.JSON(response{Success: true, Message: "Email OTP verified successfully"})
}

type verifyPhoneOTPRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	OTP         otpCode `json:"otp"`
}

// VerifyPhoneOTP redeems a phone challenge.
func (h *Handler) VerifyPhoneOTP(c *fiber.Ctx) error {
	var req verifyPhoneOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.svc.VerifyPhoneOTP(c.UserContext(), req.PhoneNumber, string(req.OTP))
	if err != nil {
		return h.serverError(c, "verify phone otp", err)
	}
	if !ok {
		return c.JSON(response{Success: false, Message: "Invalid Phone OTP"})
	}
	return c.JSON(response{Success: true, Message: "Phone OTP verified successfully"})
}

type savePhoneRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// SavePhone binds a phone number to an existing account.
func (h *Handler) SavePhone(c *fiber.Ctx) error {
	var req savePhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.svc.SavePhone(c.UserContext(), req.Email, req.PhoneNumber)
	switch {
	case err == nil:
		return c.JSON(response{Success: true, Message: "Phone number saved successfully"})
	case errors.Is(err, identity.ErrUserNotFound):
		return c.JSON(response{Success: false, Message: "User not found"})
	default:
		return h.serverError(c, "save phone", err)
	}
}

type sendPhoneOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// SendPhoneOTP issues and dispatches a phone challenge unconditionally.
func (h *Handler) SendPhoneOTP(c *fiber.Ctx) error {
	var req sendPhoneOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.SendPhoneOTP(c.UserContext(), req.PhoneNumber); err != nil {
		return h.serverError(c, "send phone otp", err)
	}
	return c.JSON(response{Success: true, Message: "OTP sent to your phone number"})
}

// serverError logs the detail and returns a generic 500 payload so
// infrastructure failures never leak specifics to the caller.
func (h *Handler) serverError(c *fiber.Ctx, op string, err error) error {
	h.logger.Error(op+" failed", "error", err)
	return c.Status(http.StatusInternalServerError).JSON(response{Success: false, Message: "Internal server error"})
}
