package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CameronXie/pos-order-relay/internal/auth"
)

type contextKey string

const (
	BearerPrefix                = "bearer"
	ClaimsContextKey contextKey = "claims"
)

// TokenValidator validates session tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTAuthMiddleware rejects requests without a valid session token and puts the
// token claims in the request context.
type JWTAuthMiddleware struct {
	validator TokenValidator
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(validator TokenValidator) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{validator: validator}
}

// Handler returns an HTTP middleware function that validates JWT tokens
func (m *JWTAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			writeUnauthorized(w, "Missing or malformed authorization header")
			return
		}

		claims, err := m.validator.Validate(token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "Token expired"
			}
			writeUnauthorized(w, message)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}

// GetClaimsFromContext extracts the session claims from request context
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}
