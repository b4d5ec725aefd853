package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec(Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := testCodec()
	signed, err := c.IssueAccessToken("user-1")
	require.NoError(t, err)

	userID, err := c.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c := testCodec()
	signed, err := c.IssueRefreshToken("user-1", "rec-1")
	require.NoError(t, err)

	claims, err := c.VerifyRefreshToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "rec-1", claims.TokenID)
}

func TestVerifyFailuresAreUniform(t *testing.T) {
	c := testCodec()

	expired := NewCodec(Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     -time.Minute,
		RefreshTTL:    -time.Minute,
	})
	expiredRefresh, err := expired.IssueRefreshToken("user-1", "rec-1")
	require.NoError(t, err)

	otherSecret := NewCodec(Config{
		AccessSecret:  []byte("other"),
		RefreshSecret: []byte("other"),
	})
	foreign, err := otherSecret.IssueRefreshToken("user-1", "rec-1")
	require.NoError(t, err)

	access, err := c.IssueAccessToken("user-1")
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":           "not-a-token",
		"empty":             "",
		"expired":           expiredRefresh,
		"wrong secret":      foreign,
		"access as refresh": access,
	}
	for name, tok := range cases {
		_, err := c.VerifyRefreshToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}

func TestRefreshTokenDoesNotVerifyAsAccess(t *testing.T) {
	c := testCodec()
	refresh, err := c.IssueRefreshToken("user-1", "rec-1")
	require.NoError(t, err)

	_, err = c.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
