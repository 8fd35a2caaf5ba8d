package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("donor-1", "DONOR", "donationhub", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret", "donationhub")
	require.NoError(t, err)
	assert.Equal(t, "donor-1", claims.UserID)
	assert.Equal(t, "DONOR", claims.Role)

	_, err = ValidateToken(token, "other-secret", "donationhub")
	assert.Error(t, err)

	_, err = ValidateToken(token, "secret", "someone-else")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("donor-1", "DONOR", "", "secret", -time.Minute)
	require.NoError(t, err)
	// A non-positive ttl falls back to the default lifetime.
	_, err = ValidateToken(token, "secret", "")
	require.NoError(t, err)

	token, err = GenerateToken("donor-1", "DONOR", "", "secret", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = ValidateToken(token, "secret", "")
	assert.Error(t, err)
}
