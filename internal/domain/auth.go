package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("a user with this email exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
}

// NewUser is what registration hands to the user store; the store assigns ID and CreatedAt.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// Principal is the identity decoded from a verified bearer token.
// A nil *Principal means the request carried no identity.
type Principal struct {
	ID    int64
	Email string
}

type Token struct {
	AccessToken string
}
