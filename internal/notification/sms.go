package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/otpgate/otpgate/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioNotifier delivers messages as SMS through the Twilio Messages API.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

// NewTwilioNotifier builds an SMS notifier from Twilio credentials.
func NewTwilioNotifier(cfg config.TwilioConfig) *TwilioNotifier {
	return &TwilioNotifier{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		baseURL:    twilioAPIBase,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message to Twilio. Any non-2xx response is an error.
func (n *TwilioNotifier) Send(ctx context.Context, message Message) error {
	form := url.Values{}
	form.Set("To", message.Destination)
	form.Set("From", n.from)
	form.Set("Body", message.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", n.baseURL, n.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
