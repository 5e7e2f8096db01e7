package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memi-server/internal/config"
	"memi-server/internal/utils/platformerrors"
)

func newIssuer(ttl time.Duration) *TokenIssuer {
	return NewTokenIssuer(&config.Config{
		AccessTokenSecret: "test-secret",
		AccessTokenTTL:    ttl,
	})
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := newIssuer(time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := newIssuer(-time.Minute)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	var platformErr *platformerrors.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, "token expired", platformErr.Message)
}

func TestVerifyMalformedToken(t *testing.T) {
	issuer := newIssuer(time.Hour)

	_, err := issuer.Verify(context.Background(), "not.a.token")
	require.Error(t, err)

	var platformErr *platformerrors.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, "invalid token", platformErr.Message)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := newIssuer(time.Hour).Issue(42)
	require.NoError(t, err)

	other := NewTokenIssuer(&config.Config{
		AccessTokenSecret: "different-secret",
		AccessTokenTTL:    time.Hour,
	})
	_, err = other.Verify(context.Background(), token)
	require.Error(t, err)
}
