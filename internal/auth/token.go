// Package auth inspects the backend's bearer tokens. Signatures are not
// checked here: the backend verifies every request. The storefront only
// reads the expiry to drop stale sessions early.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for strings that are not a JWT.
var ErrMalformedToken = errors.New("malformed token")

// TokenClaims is what the storefront reads out of a backend token.
type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

// Inspect decodes token without verifying its signature. The user id comes
// from "sub", falling back to the "id" claim the backend issues.
func Inspect(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.UserID = sub
	} else if id, ok := claims["id"].(string); ok {
		out.UserID = id
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether token can no longer be used at now. Tokens that
// cannot be decoded count as expired; tokens without an exp claim never
// expire here.
func Expired(token string, now time.Time) bool {
	claims, err := Inspect(token)
	if err != nil {
		return true
	}
	return !claims.ExpiresAt.IsZero() && !now.Before(claims.ExpiresAt)
}
