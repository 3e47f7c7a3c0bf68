package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrIncorrectPassword is returned when the password hash does not match.
var ErrIncorrectPassword = errors.New("incorrect password")

// Service manages user lifecycle against the credential store.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a bcrypt-hashed password. The phone number
// is optional and may be bound later via SavePhone.
func (s *Service) Register(ctx context.Context, email, password, phone string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies the password for an existing account. Missing users
// and wrong passwords surface as distinct errors so callers can report them
// separately.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrIncorrectPassword
	}

	return user, nil
}

// SavePhone updates the phone number of an existing user.
func (s *Service) SavePhone(ctx context.Context, email, phone string) error {
	return s.repo.UpdatePhone(ctx, email, phone)
}
