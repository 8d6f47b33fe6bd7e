package repository

import (
	"context"

	"github.com/ErlanBelekov/auth-service/internal/domain"
)

// UserRepository is the user store the auth usecase depends on.
// Find methods return domain.ErrUserNotFound when no row matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)

	// Create inserts the user and returns it with its store-assigned ID.
	// A unique violation on email is reported as domain.ErrDuplicateUser.
	Create(ctx context.Context, u domain.NewUser) (*domain.User, error)
}
