// Package auth verifies bearer tokens issued by the external identity
// provider and exposes the caller's role to handlers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognised by the route layer
const (
	RoleAdmin     = "admin"
	RolePlanner   = "planner"
	RolePurchaser = "purchaser"
	RoleInspector = "inspector"
	RoleViewer    = "viewer"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by access tokens
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Validator checks HMAC-signed tokens against a shared secret.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a validator. An empty issuer disables the issuer check.
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses and verifies a token string
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}
	return claims, nil
}

// GenerateToken signs a token for the given identity. Production tokens come
// from the identity provider; this is used by erpctl and tests.
func (v *Validator) GenerateToken(userID uint, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// HasRole reports whether role is one of allowed. Admin is always allowed.
func HasRole(role string, allowed ...string) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
