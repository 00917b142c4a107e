package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by [TokenExpiry] for API tokens that are not JWTs.
// Opaque tokens are allowed; the client simply cannot tell when they expire.
var ErrNotJWT = errors.New("api token is not a JWT")

// TokenExpiry reads the exp claim of the API bearer token without verifying
// its signature. The client never holds the signing key; the value is only
// used to warn about tokens that already expired.
//
// Returns:
//
//	time.Time - the expiry moment, zero when the token has no exp claim
//	bool      - true when an exp claim is present
//	error     - ErrNotJWT for opaque tokens, or a parsing error
func TokenExpiry(token string) (time.Time, bool, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false, ErrNotJWT
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse api token: %w", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}

	return exp.Time, true, nil
}
