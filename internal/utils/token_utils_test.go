package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("acc-1", "admin", testSecret, time.Hour, "coinvest")
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, testSecret, "coinvest")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	valid, err := GenerateAccessToken("acc-1", "", testSecret, time.Hour, "coinvest")
	require.NoError(t, err)
	expired, err := GenerateAccessToken("acc-1", "", testSecret, -time.Minute, "coinvest")
	require.NoError(t, err)

	_, err = ParseAccessToken(valid, "other-secret", "")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseAccessToken(valid, testSecret, "someone-else")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = ParseAccessToken(expired, testSecret, "")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = GenerateAccessToken("", "", testSecret, time.Hour, "")
	assert.Error(t, err)
}
