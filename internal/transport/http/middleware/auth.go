package middleware

import (
	"strings"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type tokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Auth resolves a Bearer JWT into a *domain.Principal stored in the gin
// context. It never aborts: a missing or invalid token leaves no principal
// and the handler decides what that means.
func Auth(verifier tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.Next()
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			c.Next()
			return
		}

		c.Set(principalKey, &domain.Principal{ID: claims.ID, Email: claims.Email})
		c.Next()
	}
}

// PrincipalFrom returns the principal Auth stored, or nil.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Principal)
	return p
}
