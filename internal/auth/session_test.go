package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenCount(sm *SessionManager) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.tokens)
}

func TestSessionManager_GenerateAndVerify(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	token, err := sm.GenerateSessionToken("user-1")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	userID, err := sm.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	sm.DeleteSessionToken(token)
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionManager_Expiry(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	now := time.Now()
	sm.now = func() time.Time { return now }

	token, err := sm.GenerateSessionToken("user-1")
	require.NoError(t, err)

	sm.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrExpiredSessionToken)
	assert.Equal(t, 0, tokenCount(sm))
}

func TestSessionManager_CleanupStopsWithContext(t *testing.T) {
	sm := NewSessionManager(time.Millisecond)
	_, err := sm.GenerateSessionToken("user-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sm.StartSessionTokenCleanup(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return tokenCount(sm) == 0 }, time.Second, 10*time.Millisecond)
}
