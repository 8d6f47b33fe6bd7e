package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/ErlanBelekov/auth-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine builds a minimal gin engine with the Auth middleware on GET /protected.
// The handler writes the principal's id and email, or "none".
func newEngine() *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(token.NewIssuer([]byte(testKey), time.Hour)), func(c *gin.Context) {
		p := middleware.PrincipalFrom(c)
		if p == nil {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, "%d:%s", p.ID, p.Email)
	})
	return r
}

func makeJWT(t *testing.T, key []byte, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func serve(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	newEngine().ServeHTTP(w, req)
	return w
}

func TestAuth_NoPrincipalCases(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"non-bearer scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"malformed token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + makeJWT(t, []byte(testKey), token.Claims{
			ID:    1,
			Email: "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})},
		{"wrong signing key", "Bearer " + makeJWT(t, []byte("different-key-that-is-32-chars!!"), token.Claims{
			ID:               1,
			Email:            "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})},
		{"no expiry", "Bearer " + makeJWT(t, []byte(testKey), token.Claims{ID: 1, Email: "a@x.com"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, tt.header)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (Auth must not abort)", w.Code)
			}
			if got := w.Body.String(); got != "none" {
				t.Errorf("body = %q, want none", got)
			}
		})
	}
}

func TestAuth_ValidToken_SetsPrincipal(t *testing.T) {
	tok, err := token.NewIssuer([]byte(testKey), time.Hour).Issue(42, "ann@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := serve(t, "Bearer "+tok)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "42:ann@example.com" {
		t.Errorf("body = %q, want 42:ann@example.com", got)
	}
}
