package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, name, password string) (*domain.Token, error)
	Login(ctx context.Context, email, password string) (*domain.Token, error)
	Me(ctx context.Context, principal *domain.Principal) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

// registerRequest: max=72 on Password counts runes, so bcrypt's 72-byte limit
// is enforced again by the hasher and surfaces as domain.ErrPasswordTooLong.
type registerRequest struct {
	Name     string `json:"name"     binding:"max=255"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type meResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// POST /api/auth/registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	tok, err := h.authUsecase.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"message": errDuplicateUser})
			return
		case errors.Is(err, domain.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"message": errPasswordTooLong})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{AccessToken: tok.AccessToken})
}

// POST /api/auth/login
// 401 for a wrong password or an exhausted window, 400 for an unknown email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	tok, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			c.JSON(http.StatusUnauthorized, gin.H{"message": errTooManyAttempts})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": errInvalidCredentials})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": errUserNotFound})
		default:
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{AccessToken: tok.AccessToken})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUsecase.Me(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "me", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, meResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
