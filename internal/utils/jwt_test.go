package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-key"

func TestNewAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.ID)

	claims, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, tok.ID, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt, time.Minute)
}

func TestNewAccessToken_UniqueIDs(t *testing.T) {
	a, err := NewAccessToken(testSecret, 1, time.Minute)
	require.NoError(t, err)
	b, err := NewAccessToken(testSecret, 1, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := newAccessTokenAt(testSecret, 7, 30*time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, tok.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("right-secret", 7, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken("wrong-secret", tok.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := ParseAccessToken(testSecret, raw)
		require.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestParseAccessToken_TamperedPayload(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 7, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(tok.Token, ".")
	require.Len(t, parts, 3)

	other, err := NewAccessToken(testSecret, 8, time.Hour)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other.Token, ".")[1] + "." + parts[2]

	_, err = ParseAccessToken(testSecret, forged)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessToken_RejectsNonNumericSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessToken_RequiresExpiry(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessToken_RejectsNoneAlg(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
