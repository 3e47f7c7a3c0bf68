package notification

import (
	"context"
	"log/slog"
)

const (
	// KindEmailOTP indicates a one-time code delivered over email.
	KindEmailOTP = "email_otp"
	// KindPhoneOTP indicates a one-time code delivered over SMS.
	KindPhoneOTP = "phone_otp"
)

// Message describes a notification payload. Subject is only meaningful for
// email delivery.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger instead of delivering
// them. Used in development when no SMTP or SMS credentials are configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"body", message.Body,
	)
	return nil
}
