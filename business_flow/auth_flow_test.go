package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/app/services"
)

func newTestAuthFlow(t *testing.T) AuthFlow {
	t.Helper()

	tokenService, err := services.NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	hash, err := services.HashPassword("operator-password")
	require.NoError(t, err)

	return NewAuthFlow(tokenService, "operator", hash, 900)
}

func TestLogin(t *testing.T) {
	flow := newTestAuthFlow(t)

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		resp, err := flow.Login(context.Background(), &dto.LoginRequest{Username: "operator", Password: "operator-password"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, int64(900), resp.ExpiresIn)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := flow.Login(context.Background(), &dto.LoginRequest{Username: "operator", Password: "wrong"})
		assert.ErrorIs(t, err, ErrIncorrectCredentials)
	})

	t.Run("unknown username is rejected", func(t *testing.T) {
		_, err := flow.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "operator-password"})
		assert.ErrorIs(t, err, ErrIncorrectCredentials)
	})
}

func TestRefresh(t *testing.T) {
	flow := newTestAuthFlow(t)

	login, err := flow.Login(context.Background(), &dto.LoginRequest{Username: "operator", Password: "operator-password"})
	require.NoError(t, err)

	t.Run("refresh token yields a new pair", func(t *testing.T) {
		resp, err := flow.Refresh(context.Background(), login.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := flow.Refresh(context.Background(), login.AccessToken)
		assert.ErrorIs(t, err, ErrIncorrectCredentials)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := flow.Refresh(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrIncorrectCredentials)
	})
}
