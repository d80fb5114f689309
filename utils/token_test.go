package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKeys(t *testing.T) {
	t.Setenv("JWT_ACCESS_KEY", "access-test-key")
	t.Setenv("JWT_REFRESH_KEY", "refresh-test-key")
	t.Setenv("JWT_ACCESS_EXPIRE", "15")
	t.Setenv("JWT_REFRESH_EXPIRE", "60")
}

func TestGenerateAndCheckTokens(t *testing.T) {
	setKeys(t)

	tokens, err := GenerateTokens("5f0000000000000000000001", false)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Access)
	require.NotEmpty(t, tokens.Refresh)

	claims, err := CheckAndExtractTokenMetadata(tokens.Access, "JWT_ACCESS_KEY")
	require.NoError(t, err)
	assert.Equal(t, "5f0000000000000000000001", claims.UserID)
	assert.False(t, claims.Otp)
	assert.Greater(t, claims.Exp, int64(0))

	claims, err = CheckAndExtractTokenMetadata(tokens.Refresh, "JWT_REFRESH_KEY")
	require.NoError(t, err)
	assert.Equal(t, "5f0000000000000000000001", claims.UserID)
}

func TestCheckTokenFailsClosed(t *testing.T) {
	setKeys(t)

	tokens, err := GenerateTokens("5f0000000000000000000001", true)
	require.NoError(t, err)

	// Wrong key, garbage and empty credentials are all rejected.
	_, err = CheckAndExtractTokenMetadata(tokens.Access, "JWT_REFRESH_KEY")
	assert.Error(t, err)

	_, err = CheckAndExtractTokenMetadata("not-a-token", "JWT_ACCESS_KEY")
	assert.Error(t, err)

	_, err = CheckAndExtractTokenMetadata("", "JWT_ACCESS_KEY")
	assert.Error(t, err)
}

func TestCheckTokenExpired(t *testing.T) {
	setKeys(t)
	t.Setenv("JWT_ACCESS_EXPIRE", "-1")

	tokens, err := GenerateTokens("5f0000000000000000000001", false)
	require.NoError(t, err)

	_, err = CheckAndExtractTokenMetadata(tokens.Access, "JWT_ACCESS_KEY")
	assert.Error(t, err)
}

func TestOtpFlagRoundTrip(t *testing.T) {
	setKeys(t)

	tokens, err := GenerateTokens("5f0000000000000000000002", true)
	require.NoError(t, err)

	claims, err := CheckAndExtractTokenMetadata(tokens.Access, "JWT_ACCESS_KEY")
	require.NoError(t, err)
	assert.True(t, claims.Otp)
}
