package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otpgate/otpgate/internal/identity"
	"github.com/otpgate/otpgate/internal/notification"
	"github.com/otpgate/otpgate/internal/otp"
)

const dispatchTimeout = 15 * time.Second

// Service orchestrates signup, password login, and the OTP second factor.
type Service struct {
	ids      *identity.Service
	registry *otp.Registry
	email    notification.Notifier
	sms      notification.Notifier
	logger   *slog.Logger
}

// NewService wires the auth flows over the credential store, the challenge
// registry, and the two delivery collaborators.
func NewService(
	ids *identity.Service,
	registry *otp.Registry,
	email notification.Notifier,
	sms notification.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{ids: ids, registry: registry, email: email, sms: sms, logger: logger}
}

// Signup registers a new user. The phone number is optional.
func (s *Service) Signup(ctx context.Context, email, password, phone string) error {
	_, err := s.ids.Register(ctx, email, password, phone)
	return err
}

// Login verifies the password and, on success, issues an email challenge and
// dispatches the code. Issuance reports success regardless of delivery: the
// send runs fire-and-forget and failures are only logged.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if _, err := s.ids.Authenticate(ctx, email, password); err != nil {
		return err
	}

	code, err := s.registry.Issue(ctx, email, otp.ChannelEmail)
	if err != nil {
		return err
	}

	s.dispatch(s.email, notification.Message{
		Kind:        notification.KindEmailOTP,
		Destination: email,
		Subject:     "Your OTP Code",
		Body:        fmt.Sprintf("Your OTP is %s", code),
	})

	return nil
}

// VerifyEmailOTP redeems a pending email challenge.
func (s *Service) VerifyEmailOTP(ctx context.Context, email, code string) (bool, error) {
	return s.registry.Verify(ctx, email, otp.ChannelEmail, code)
}

// VerifyPhoneOTP redeems a pending phone challenge.
func (s *Service) VerifyPhoneOTP(ctx context.Context, phone, code string) (bool, error) {
	return s.registry.Verify(ctx, phone, otp.ChannelPhone, code)
}

// SavePhone binds a phone number to an existing user.
func (s *Service) SavePhone(ctx context.Context, email, phone string) error {
	return s.ids.SavePhone(ctx, email, phone)
}

// SendPhoneOTP issues a phone challenge and dispatches the code over SMS.
// There is no password step on this path.
func (s *Service) SendPhoneOTP(ctx context.Context, phone string) error {
	code, err := s.registry.Issue(ctx, phone, otp.ChannelPhone)
	if err != nil {
		return err
	}

	s.dispatch(s.sms, notification.Message{
		Kind:        notification.KindPhoneOTP,
		Destination: phone,
		Body:        fmt.Sprintf("Your OTP is %s", code),
	})

	return nil
}

// dispatch hands a message to a notifier without awaiting the outcome. The
// delivery error is deliberately dropped here: the issuing flow must not fail
// because a collaborator did.
func (s *Service) dispatch(n notification.Notifier, message notification.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := n.Send(ctx, message); err != nil {
			s.logger.Error("notification dispatch failed",
				"kind", message.Kind,
				"destination", message.Destination,
				"error", err,
			)
		}
	}()
}
