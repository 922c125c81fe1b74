package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Common validation errors
var (
	ErrEmptyEmail       = NewValidationError("email", "cannot be empty")
	ErrPasswordTooShort = NewValidationError("password", "must be at least 12 characters long")
	ErrPasswordTooLong  = NewValidationError("password", "must be at most 72 characters long")
	ErrEmptyPassword    = NewValidationError("password", "cannot be empty")
)

const (
	minPasswordLength = 12
	maxPasswordLength = 72 // bcrypt input limit
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// User is a registered account. Every other entity is owned by exactly one user.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only held between request and hashing
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a normalized email and the plaintext password.
// The caller hashes the password before storing the user.
func NewUser(email, password string, now time.Time) (*User, error) {
	user := &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the email format and whichever password form is present.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if validate.Var(u.Email, "email") != nil {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidatePassword enforces the accepted password length range.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return ErrEmptyPassword
	case n < minPasswordLength:
		return ErrPasswordTooShort
	case n > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}
