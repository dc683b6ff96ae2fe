package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "archiva", "archiva-api")
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, []string{"admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.False(t, claims.System)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", "archiva", "archiva-api")

	token, err := svc.GenerateAccessToken(id.NewUserID(), nil, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestWrongKeyRejected(t *testing.T) {
	svc := NewJWTService("test-secret", "archiva", "archiva-api")
	other := NewJWTService("different-secret", "archiva", "archiva-api")

	token, err := svc.GenerateAccessToken(id.NewUserID(), nil, time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := NewJWTService("test-secret", "archiva", "archiva-api")
	adapter := NewMiddlewareAdapter(svc)

	userID := id.NewUserID()
	token, err := svc.GenerateAccessToken(userID, []string{"curator"}, time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, []string{"curator"}, claims.Roles)
}
