package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("sid-1", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpiredAndEmptySession(t *testing.T) {
	expired, err := GenerateToken("sid-1", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.Error(t, err)

	anonymous, err := GenerateToken("", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(anonymous, "secret")
	assert.EqualError(t, err, "token has no session id")
}
