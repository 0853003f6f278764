package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken_RoundTrip(t *testing.T) {
	v := NewValidator("secret", "erp-idp")

	token, err := v.GenerateToken(7, "alice", RoleInspector, time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleInspector, claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	v := NewValidator("secret", "erp-idp")

	expired, err := v.GenerateToken(1, "bob", RoleViewer, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewValidator("other", "erp-idp").GenerateToken(1, "bob", RoleViewer, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewValidator("secret", "someone-else").GenerateToken(1, "bob", RoleViewer, time.Hour)
	require.NoError(t, err)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:         "carol",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "erp-idp"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"missing role": noRole,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(RoleAdmin, RoleInspector))
	assert.True(t, HasRole(RoleInspector, RoleInspector, RolePlanner))
	assert.False(t, HasRole(RoleViewer, RoleInspector))
	assert.False(t, HasRole("", RoleInspector))
}
