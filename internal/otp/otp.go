package otp

import "context"

// Channel identifies the delivery medium a challenge was issued through.
// Verification must present the same channel the code was issued for.
type Channel string

const (
	// ChannelEmail marks codes delivered to an email address.
	ChannelEmail Channel = "email"
	// ChannelPhone marks codes delivered to a phone number.
	ChannelPhone Channel = "phone"
)

// Challenge is the server-side record of an issued code awaiting redemption.
type Challenge struct {
	RecipientKey string
	Code         string
	Channel      Channel
}

// Store persists pending challenges. Keys arrive already namespaced by
// channel, so two recipients can only collide within the same channel.
// Implementations must make Put and Redeem atomic per key.
type Store interface {
	// Put records ch under key, replacing any pending challenge.
	Put(ctx context.Context, key string, ch Challenge) error

	// Redeem removes the challenge under key iff its code and channel match
	// ch, reporting whether one was consumed. A mismatch leaves the stored
	// challenge untouched.
	Redeem(ctx context.Context, key string, ch Challenge) (bool, error)
}
