package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTM() *TokenManager {
	return NewTokenManager("acc-secret", "ref-secret", "complaints-backend", 15*time.Minute, 24*time.Hour)
}

func TestGeneratePairAndParse(t *testing.T) {
	tm := newTestTM()

	access, refresh, exp, err := tm.GeneratePair("u1", "admin", "admin")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, isRefresh, err := tm.ParseAny(access)
	require.NoError(t, err)
	assert.False(t, isRefresh)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "complaints-backend", claims.Issuer)

	claims, isRefresh, err = tm.ParseAny(refresh)
	require.NoError(t, err)
	assert.True(t, isRefresh)
	assert.Equal(t, "admin", claims.Username)
}

func TestParseAnyRejectsGarbage(t *testing.T) {
	tm := newTestTM()
	_, _, err := tm.ParseAny("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAnyRejectsForeignSecret(t *testing.T) {
	other := NewTokenManager("other-a", "other-r", "x", time.Minute, time.Hour)
	access, _, _, err := other.GeneratePair("u1", "admin", "admin")
	require.NoError(t, err)

	_, _, err = newTestTM().ParseAny(access)
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("agent123")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("agent123", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}
