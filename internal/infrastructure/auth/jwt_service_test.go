package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/storefront/domain"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "storefront-stub", time.Hour)

	token, err := svc.GenerateAccessToken("user_abc", domain.RoleAdmin, "sess_1")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "sess_1", claims.SessionID)
	assert.Equal(t, claims.IssuedAt+3600, claims.ExpiresAt)
	assert.Equal(t, time.Hour, svc.AccessTTL())
}

func TestJWTService_UniqueTokens(t *testing.T) {
	svc := NewJWTService("secret", "iss", time.Hour)
	a, err := svc.GenerateAccessToken("user_1", domain.RoleCustomer, "s")
	require.NoError(t, err)
	b, err := svc.GenerateAccessToken("user_1", domain.RoleCustomer, "s")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTService_Rejections(t *testing.T) {
	svc := NewJWTService("secret", "iss", time.Hour)

	expired := NewJWTService("secret", "iss", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.GenerateAccessToken("user_1", domain.RoleCustomer, "s")
	require.NoError(t, err)

	otherKey, err := NewJWTService("other", "iss", time.Hour).GenerateAccessToken("user_1", domain.RoleCustomer, "s")
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("secret", "elsewhere", time.Hour).GenerateAccessToken("user_1", domain.RoleCustomer, "s")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user_1", "iss": "iss", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "iss", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{name: "expired", token: expiredToken, expectedErr: domain.ErrTokenExpired},
		{name: "wrong key", token: otherKey, expectedErr: domain.ErrTokenInvalid},
		{name: "wrong issuer", token: otherIssuer, expectedErr: domain.ErrTokenInvalid},
		{name: "alg none", token: none, expectedErr: domain.ErrTokenInvalid},
		{name: "missing user", token: noUser, expectedErr: domain.ErrTokenInvalid},
		{name: "garbage", token: "not.a.jwt", expectedErr: domain.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
