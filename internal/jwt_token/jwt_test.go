package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/authz"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

func newService() *JWTService {
	return NewJWTService("test-signing-key", "test-issuer", "test-audience")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService()
	userID := id.UserID(uuid.New())
	roles := []string{authz.RoleOrganizer}

	token, err := svc.GenerateAccessToken(userID, roles, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, roles, claims.Roles)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejects(t *testing.T) {
	svc := newService()
	userID := id.UserID(uuid.New())

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("invalid-token-string")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		past := newService()
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.GenerateAccessToken(userID, nil, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		de, ok := dErrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "token has expired", de.Message)
	})

	t.Run("other signing key", func(t *testing.T) {
		token, err := NewJWTService("other-key", "test-issuer", "test-audience").GenerateAccessToken(userID, nil, time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other audience", func(t *testing.T) {
		token, err := NewJWTService("test-signing-key", "test-issuer", "elsewhere").GenerateAccessToken(userID, nil, time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			UserID: userID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    "test-issuer",
				Audience:  []string{"test-audience"},
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := svc.GenerateAccessToken(id.UserID(uuid.Nil), nil, time.Hour)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestValidator(t *testing.T) {
	svc := newService()
	userID := id.UserID(uuid.New())
	token, err := svc.GenerateAccessToken(userID, []string{" Admin", authz.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, []string{authz.RoleAdmin}, claims.Roles)
	assert.NotEmpty(t, claims.JTI)
}
