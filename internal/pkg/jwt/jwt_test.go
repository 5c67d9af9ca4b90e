package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParseRoundtrip(t *testing.T) {
	token, err := Sign("user-1", false, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.False(t, claims.Admin)
}

func TestAdminClaim(t *testing.T) {
	token, err := Sign("user-2", true, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not.a.token")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := Sign("user-3", false, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := Sign("user-4", false, time.Hour)
	require.NoError(t, err)

	SetSecret("rotated-secret")
	defer SetSecret(defaultSecret)

	_, err = Parse(token)
	assert.Error(t, err)
}
