package identity

import "time"

// User represents a registered account in the credential store.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Phone        string
	CreatedAt    time.Time
}
