package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/otpgate/otpgate/internal/identity"
	"github.com/otpgate/otpgate/internal/logging"
	"github.com/otpgate/otpgate/internal/otp"
)

func setupTestApp() (*fiber.App, *captureNotifier, *captureNotifier) {
	email := newCaptureNotifier()
	sms := newCaptureNotifier()
	svc := NewService(
		identity.NewService(identity.NewMemoryRepository()),
		otp.NewRegistry(otp.NewMemoryStore()),
		email,
		sms,
		logging.Discard(),
	)
	h := NewHandler(svc, logging.Discard())

	app := fiber.New()
	app.Post("/signup", h.Signup)
	app.Post("/login", h.Login)
	app.Post("/verify-email-otp", h.VerifyEmailOTP)
	app.Post("/verify-phone-otp", h.VerifyPhoneOTP)
	app.Post("/save-phone", h.SavePhone)
	app.Post("/send-phone-otp", h.SendPhoneOTP)

	return app, email, sms
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s: %v", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var decoded response
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode %q: %v", string(payload), err)
	}
	return resp.StatusCode, decoded
}

func TestSignupAndDuplicate(t *testing.T) {
	app, _, _ := setupTestApp()

	status, resp := postJSON(t, app, "/signup",
		`{"email":"user@example.com","password":"hunter22","phoneNumber":"+15550001111"}`)
	if status != fiber.StatusOK || !resp.Success {
		t.Fatalf("expected signup success, got %d %+v", status, resp)
	}
	if resp.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	status, resp = postJSON(t, app, "/signup",
		`{"email":"user@example.com","password":"other","phoneNumber":""}`)
	if status != fiber.StatusOK || resp.Success {
		t.Fatalf("expected duplicate signup to fail softly, got %d %+v", status, resp)
	}
	if resp.Message != "User already exists" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestLoginVerifyReplayFlow(t *testing.T) {
	app, email, _ := setupTestApp()

	postJSON(t, app, "/signup", `{"email":"user@example.com","password":"hunter22"}`)

	status, resp := postJSON(t, app, "/login", `{"email":"user@example.com","password":"hunter22"}`)
	if status != fiber.StatusOK || !resp.Success {
		t.Fatalf("expected login success, got %d %+v", status, resp)
	}
	if resp.Message != "OTP sent to your email" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	code := codeFromBody(t, email.wait(t).Body)

	status, resp = postJSON(t, app, "/verify-email-otp",
		fmt.Sprintf(`{"email":"user@example.com","otp":"%s"}`, code))
	if status != fiber.StatusOK || !resp.Success {
		t.Fatalf("expected verification success, got %d %+v", status, resp)
	}
	if resp.Message != "Email OTP verified successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	// Replaying the consumed code must fail.
	status, resp = postJSON(t, app, "/verify-email-otp",
		fmt.Sprintf(`{"email":"user@example.com","otp":"%s"}`, code))
	if status != fiber.StatusOK || resp.Success {
		t.Fatalf("expected replay to fail, got %d %+v", status, resp)
	}
	if resp.Message != "Invalid Email OTP" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestLoginFailureMessages(t *testing.T) {
	app, _, _ := setupTestApp()

	postJSON(t, app, "/signup", `{"email":"user@example.com","password":"hunter22"}`)

	_, resp := postJSON(t, app, "/login", `{"email":"missing@example.com","password":"hunter22"}`)
	if resp.Success || resp.Message != "User does not exist" {
		t.Fatalf("unexpected response %+v", resp)
	}

	_, resp = postJSON(t, app, "/login", `{"email":"user@example.com","password":"wrong"}`)
	if resp.Success || resp.Message != "Incorrect password" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestVerifyEmailOTPAcceptsNumericCode(t *testing.T) {
	app, email, _ := setupTestApp()

	postJSON(t, app, "/signup", `{"email":"user@example.com","password":"hunter22"}`)
	postJSON(t, app, "/login", `{"email":"user@example.com","password":"hunter22"}`)

	code := codeFromBody(t, email.wait(t).Body)

	// Code submitted as a JSON number rather than a string.
	_, resp := postJSON(t, app, "/verify-email-otp",
		fmt.Sprintf(`{"email":"user@example.com","otp":%s}`, code))
	if !resp.Success {
		t.Fatalf("expected numeric otp to verify, got %+v", resp)
	}
}

func TestPhoneOTPFlow(t *testing.T) {
	app, _, sms := setupTestApp()

	status, resp := postJSON(t, app, "/send-phone-otp", `{"phoneNumber":"+15550001111"}`)
	if status != fiber.StatusOK || !resp.Success {
		t.Fatalf("expected send to succeed, got %d %+v", status, resp)
	}
	if resp.Message != "OTP sent to your phone number" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	code := codeFromBody(t, sms.wait(t).Body)

	// The phone code cannot redeem on the email endpoint.
	_, resp = postJSON(t, app, "/verify-email-otp",
		fmt.Sprintf(`{"email":"+15550001111","otp":"%s"}`, code))
	if resp.Success {
		t.Fatalf("expected cross-channel verification to fail")
	}

	_, resp = postJSON(t, app, "/verify-phone-otp",
		fmt.Sprintf(`{"phoneNumber":"+15550001111","otp":"%s"}`, code))
	if !resp.Success || resp.Message != "Phone OTP verified successfully" {
		t.Fatalf("unexpected response %+v", resp)
	}

	_, resp = postJSON(t, app, "/verify-phone-otp",
		fmt.Sprintf(`{"phoneNumber":"+15550001111","otp":"%s"}`, code))
	if resp.Success || resp.Message != "Invalid Phone OTP" {
		t.Fatalf("expected replay to fail, got %+v", resp)
	}
}

func TestSavePhone(t *testing.T) {
	app, _, _ := setupTestApp()

	postJSON(t, app, "/signup", `{"email":"user@example.com","password":"hunter22"}`)

	_, resp := postJSON(t, app, "/save-phone",
		`{"email":"user@example.com","phoneNumber":"+15550001111"}`)
	if !resp.Success || resp.Message != "Phone number saved successfully" {
		t.Fatalf("unexpected response %+v", resp)
	}

	_, resp = postJSON(t, app, "/save-phone",
		`{"email":"missing@example.com","phoneNumber":"+15550001111"}`)
	if resp.Success || resp.Message != "User not found" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
