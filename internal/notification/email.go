package notification

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/otpgate/otpgate/internal/config"
)

// SMTPNotifier delivers messages as plain-text email over SMTP.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier builds an email notifier from SMTP credentials.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the SMTP server and sends a single message. gomail has no
// context support, so cancellation only takes effect before the dial.
func (n *SMTPNotifier) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", message.Destination)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/plain", message.Body)

	return n.dialer.DialAndSend(msg)
}
