package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenManager("short", time.Hour)
	assert.Error(t, err)

	m, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.TTL())
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := m.Generate(Identity{DiscordID: "42", Username: "marshal", Role: RoleAdmin})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.DiscordID)
	assert.Equal(t, "marshal", claims.Username)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "discord_42", claims.Subject)
}

func TestTokenRejects(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("unknown role", func(t *testing.T) {
		_, err := m.Generate(Identity{DiscordID: "1", Role: "overlord"})
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return issued }
		token, err := m.Generate(Identity{DiscordID: "1", Role: RolePlayer})
		require.NoError(t, err)

		m.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		m.now = time.Now
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager("fedcba9876543210fedcba9876543210", time.Hour)
		require.NoError(t, err)
		token, err := other.Generate(Identity{DiscordID: "1", Role: RolePlayer})
		require.NoError(t, err)
		_, err = m.Validate(token)
		assert.Error(t, err)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(token)
		assert.Error(t, err)
	})
}
