package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"  // sentinel errors for token failures
	"strconv" // user ids travel as decimal strings in the sub claim
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
	"github.com/google/uuid"       // unique token ids for the jti claim
)

var (
	// ErrTokenExpired is returned when a well-formed, correctly signed token
	// is past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, wrong algorithms and malformed
	// payloads.
	ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  ID is the jti claim and keys the optional denylist.
type AccessToken struct {
	Token string    // the serialized JWT string
	ID    string    // unique token id (jti)
	Exp   time.Time // the UTC expiration time
}

// AccessClaims is the decoded, verified payload of an access token.
type AccessClaims struct {
	UserID    uint64
	TokenID   string
	ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The subject is
// the decimal user id; exp, iat and jti are standard registered claims.
func NewAccessToken(secret string, userID uint64, ttl time.Duration) (AccessToken, error) {
	return newAccessTokenAt(secret, userID, ttl, time.Now().UTC())
}

func newAccessTokenAt(secret string, userID uint64, ttl time.Duration, now time.Time) (AccessToken, error) {
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: id, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns its
// claims.  Expired tokens yield ErrTokenExpired; every other failure yields
// ErrTokenInvalid.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return AccessClaims{}, ErrTokenInvalid
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return AccessClaims{}, ErrTokenInvalid
	}
	return AccessClaims{
		UserID:    uid,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
