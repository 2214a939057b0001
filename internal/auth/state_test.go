package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManager(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("discord", "firefox")
	require.NoError(t, err)
	assert.Equal(t, 1, sm.Pending())

	require.NoError(t, sm.ValidateState(state, "discord", "firefox"))
	assert.Equal(t, 0, sm.Pending())

	assert.Error(t, sm.ValidateState(state, "discord", "firefox"), "states are single use")
	assert.Error(t, sm.ValidateState("", "discord", "firefox"))
}

func TestStateManagerRejects(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sm := NewStateManager()
	sm.now = func() time.Time { return now }

	t.Run("provider mismatch", func(t *testing.T) {
		state, err := sm.GenerateState("discord", "ua")
		require.NoError(t, err)
		assert.Error(t, sm.ValidateState(state, "github", "ua"))
	})

	t.Run("user agent mismatch is tolerated", func(t *testing.T) {
		state, err := sm.GenerateState("discord", "ua")
		require.NoError(t, err)
		assert.NoError(t, sm.ValidateState(state, "discord", "other"))
	})

	t.Run("expired", func(t *testing.T) {
		state, err := sm.GenerateState("discord", "ua")
		require.NoError(t, err)
		sm.now = func() time.Time { return now.Add(StateTTL + time.Second) }
		defer func() { sm.now = func() time.Time { return now } }()
		assert.Error(t, sm.ValidateState(state, "discord", "ua"))
	})
}

func TestCleanupExpiredStates(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sm := NewStateManager()
	sm.now = func() time.Time { return now }

	_, err := sm.GenerateState("discord", "ua")
	require.NoError(t, err)
	sm.now = func() time.Time { return now.Add(StateTTL / 2) }
	_, err = sm.GenerateState("discord", "ua")
	require.NoError(t, err)

	sm.now = func() time.Time { return now.Add(StateTTL + time.Minute) }
	assert.Equal(t, 1, sm.cleanupExpiredStates())
	assert.Equal(t, 1, sm.Pending())
}
