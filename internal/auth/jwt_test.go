package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseUserToken(t *testing.T) {
	token, err := GenerateUserToken("u1", "s3cret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseUserToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParseUserTokenRejects(t *testing.T) {
	good, err := GenerateUserToken("u1", "s3cret", time.Minute)
	require.NoError(t, err)
	expired, err := GenerateUserToken("u1", "s3cret", -time.Minute)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &UserClaims{}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]struct{ token, secret string }{
		"wrong secret": {good, "other"},
		"no secret":    {good, ""},
		"expired":      {expired, "s3cret"},
		"garbage":      {"not.a.token", "s3cret"},
		"no user id":   {noUser, "s3cret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseUserToken(tc.token, tc.secret)
			assert.Error(t, err)
		})
	}
}

func TestGenerateUserTokenRequiresSecret(t *testing.T) {
	_, err := GenerateUserToken("u1", "", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateSecureToken(t *testing.T) {
	a, b := GenerateSecureToken(), GenerateSecureToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
