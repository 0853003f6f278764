package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

type claimsKey struct{}

// systemClaims identify callers when authentication is disabled
var systemClaims = &auth.Claims{Username: "system", Role: auth.RoleAdmin}

// Authenticator verifies bearer tokens and enforces roles per route
type Authenticator struct {
	validator *auth.Validator
	enabled   bool
}

// NewAuthenticator creates an authenticator. A nil validator disables checks
// and every request runs as the system user.
func NewAuthenticator(validator *auth.Validator) *Authenticator {
	return &Authenticator{validator: validator, enabled: validator != nil}
}

// Require allows the request through when the caller holds one of roles.
// Without roles any authenticated caller is accepted.
func (a *Authenticator) Require(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if a == nil || !a.enabled {
				next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), systemClaims)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Warn(r.Context()).Msg("Missing or malformed authorization header")
				RespondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "authorization header required"})
				return
			}

			claims, err := a.validator.ValidateToken(parts[1])
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Invalid token")
				RespondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "invalid token"})
				return
			}

			if len(roles) > 0 && !auth.HasRole(claims.Role, roles...) {
				logger.Warn(r.Context()).
					Str("username", claims.Username).
					Str("role", claims.Role).
					Strs("required", roles).
					Msg("Access denied")
				RespondJSON(w, http.StatusForbidden, Response{Success: false, Error: "insufficient role"})
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		}
	}
}

// ContextWithClaims stores the caller identity
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the caller identity, if any
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// Username returns the caller's username or "system"
func Username(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok && claims.Username != "" {
		return claims.Username
	}
	return systemClaims.Username
}
