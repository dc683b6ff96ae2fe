package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"archiva/internal/identity"
	id "archiva/pkg/domain"
)

// TokenValidator validates a bearer token and returns the claims we need.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the claims extracted from a validated token.
type TokenClaims struct {
	UserID string
	Roles  []string
	System bool
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for tests that build contexts directly.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context. The zero
// Identity (anonymous) is returned when no auth middleware ran.
func GetIdentity(ctx context.Context) identity.Identity {
	if ident, ok := ctx.Value(ContextKeyIdentity).(identity.Identity); ok {
		return ident
	}
	return identity.Identity{}
}

// WithIdentity injects an identity into the context. Used by RequireAuth and
// by handler tests.
func WithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// RequireAuth validates the bearer token and stores the resulting identity in
// the request context. Requests without a valid token get 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w)
				return
			}
			ident, err := identityFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
		})
	}
}

func identityFromClaims(claims *TokenClaims) (identity.Identity, error) {
	if claims.System {
		return identity.System(), nil
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return identity.Identity{}, err
	}
	roles := make([]identity.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, identity.Role(r))
	}
	return identity.User(userID, roles...), nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
