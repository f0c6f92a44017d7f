package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims craftboard cares about. Tokens are
// minted by the account frontend; this service only ever verifies them.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated web account.
	Username string `json:"username,omitempty"`

	// Permission scopes, e.g. "servers:write".
	Scopes []string `json:"scopes,omitempty"`
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before its nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
