package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/email"
	"github.com/ErlanBelekov/auth-service/internal/metrics"
	"github.com/ErlanBelekov/auth-service/internal/repository"
)

const (
	// MaxLoginAttempts is how many logins an email may try inside one window.
	MaxLoginAttempts = 5
	// LoginBlockTime is the window length. It starts at the first attempt and is never extended.
	LoginBlockTime = 180 * time.Second

	loginAttemptsKeyPrefix = "login_attempts:"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports (false, nil) on mismatch; an error means the hash itself is unusable.
	Verify(password, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

type AuthUsecase struct {
	users    repository.UserRepository
	attempts repository.AttemptCounter
	hasher   PasswordHasher
	issuer   TokenIssuer
	email    email.Sender
	logger   *slog.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	attempts repository.AttemptCounter,
	hasher PasswordHasher,
	issuer TokenIssuer,
	emailSender email.Sender,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		attempts: attempts,
		hasher:   hasher,
		issuer:   issuer,
		email:    emailSender,
		logger:   logger.With("component", "auth_usecase"),
	}
}

// LoginAttemptsKey is the attempt counter key for an email.
func LoginAttemptsKey(emailAddr string) string {
	return loginAttemptsKeyPrefix + emailAddr
}

// Register creates the user and returns a token for it.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, name, password string) (*domain.Token, error) {
	tok, err := u.register(ctx, emailAddr, name, password)
	metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
	return tok, err
}

func (u *AuthUsecase) register(ctx context.Context, emailAddr, name, password string) (*domain.Token, error) {
	exists, err := u.users.Exists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUser
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Two concurrent registrations can both pass the Exists check; the store's
	// unique constraint turns the loser into ErrDuplicateUser.
	user, err := u.users.Create(ctx, domain.NewUser{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u.issueToken(user)
}

// Login checks the per-email throttle, charges the attempt, then verifies credentials.
// A charged attempt is never refunded: failed logins and infrastructure errors
// after the charge both leave the counter as it is.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.Token, error) {
	tok, err := u.login(ctx, emailAddr, password)
	metrics.LoginAttemptsTotal.WithLabelValues(loginOutcome(err)).Inc()
	return tok, err
}

func (u *AuthUsecase) login(ctx context.Context, emailAddr, password string) (*domain.Token, error) {
	key := LoginAttemptsKey(emailAddr)

	count, err := u.attempts.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get login attempts: %w", err)
	}
	if count >= MaxLoginAttempts {
		return nil, domain.ErrTooManyAttempts
	}

	if count == 0 {
		if err = u.attempts.SetWithTTL(ctx, key, 1, LoginBlockTime); err != nil {
			return nil, fmt.Errorf("start login attempts window: %w", err)
		}
		count = 1
	} else {
		if count, err = u.attempts.Increment(ctx, key); err != nil {
			return nil, fmt.Errorf("increment login attempts: %w", err)
		}
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := u.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		if count == MaxLoginAttempts {
			u.sendLockoutNotice(ctx, user.Email)
		}
		return nil, domain.ErrInvalidCredentials
	}

	if err = u.attempts.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("reset login attempts: %w", err)
	}

	return u.issueToken(user)
}

// Me resolves the principal set by the auth middleware to its stored user.
// A missing principal and a principal whose user no longer exists are
// indistinguishable to the caller.
func (u *AuthUsecase) Me(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := u.users.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Unlock clears the login window for an email, as a successful login would.
func (u *AuthUsecase) Unlock(ctx context.Context, emailAddr string) error {
	if err := u.attempts.Delete(ctx, LoginAttemptsKey(emailAddr)); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func (u *AuthUsecase) issueToken(user *domain.User) (*domain.Token, error) {
	signed, err := u.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.Token{AccessToken: signed}, nil
}

// sendLockoutNotice is best effort: the login has already failed and its
// outcome must not depend on the mail provider.
func (u *AuthUsecase) sendLockoutNotice(ctx context.Context, to string) {
	subject := "Your account is temporarily locked"
	body := fmt.Sprintf(
		`<p>We blocked sign-in to your account after %d failed attempts.</p><p>You can try again in %d minutes.</p>`,
		MaxLoginAttempts, int(LoginBlockTime.Minutes()),
	)
	if err := u.email.Send(ctx, to, subject, body); err != nil {
		u.logger.WarnContext(ctx, "send lockout notice", "error", err)
	}
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateUser):
		return "duplicate"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return "invalid_password"
	default:
		return "error"
	}
}
