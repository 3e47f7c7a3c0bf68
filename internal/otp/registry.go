package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// Registry issues and redeems one-time codes, scoped per recipient and per
// delivery channel. At most one challenge is pending per (channel, recipient)
// pair; issuing again replaces it. Challenges never expire on their own.
type Registry struct {
	store Store
}

// NewRegistry creates a registry backed by the given challenge store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Issue generates a fresh 6-digit code for the recipient and records it,
// overwriting any pending challenge for the same recipient and channel. The
// caller is responsible for delivering the returned code.
func (r *Registry) Issue(ctx context.Context, recipientKey string, channel Channel) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	ch := Challenge{RecipientKey: recipientKey, Code: code, Channel: channel}
	if err := r.store.Put(ctx, challengeKey(recipientKey, channel), ch); err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}

	return code, nil
}

// Verify redeems the pending challenge for the recipient if the submitted
// code and channel match. A successful verification consumes the challenge;
// a failed one leaves it pending. Unknown recipients simply verify false.
func (r *Registry) Verify(ctx context.Context, recipientKey string, channel Channel, code string) (bool, error) {
	candidate := Challenge{
		RecipientKey: recipientKey,
		Code:         strings.TrimSpace(code),
		Channel:      channel,
	}
	return r.store.Redeem(ctx, challengeKey(recipientKey, channel), candidate)
}

// challengeKey namespaces the lookup key by channel so an email address and a
// phone number that compare equal as strings cannot interfere.
func challengeKey(recipientKey string, channel Channel) string {
	return string(channel) + ":" + recipientKey
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(codeMin+n.Int64(), 10), nil
}
