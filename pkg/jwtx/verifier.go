package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrInvalidKey  = errors.New("jwtx: invalid public key")
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAVerifier verifies Ed25519-signed tokens against a single public key.
// The account frontend signs sessions; craftboard holds only the public half.
type EdDSAVerifier struct {
	key    ed25519.PublicKey
	issuer string
	leeway time.Duration
}

// NewEdDSAVerifier builds a verifier from a PEM-encoded Ed25519 public key.
// issuer is enforced when non-empty.
func NewEdDSAVerifier(pemKey []byte, issuer string) (*EdDSAVerifier, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, ErrInvalidKey
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	key, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidKey
	}

	return &EdDSAVerifier{key: key, issuer: issuer, leeway: 30 * time.Second}, nil
}

func (v *EdDSAVerifier) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("jwtx: %w", err)
		}
	}

	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}
