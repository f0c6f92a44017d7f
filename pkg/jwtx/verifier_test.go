package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (ed25519.PrivateKey, []byte) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, pemKey
}

func signToken(t *testing.T, priv ed25519.PrivateKey, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	require.NoError(t, err)
	return token
}

func TestVerifyValidToken(t *testing.T) {
	t.Parallel()

	priv, pemKey := newKeyPair(t)
	v, err := NewEdDSAVerifier(pemKey, "craftboard-accounts")
	require.NoError(t, err)

	now := time.Now()
	token := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "craftboard-accounts",
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		Username: "steve",
		Scopes:   []string{"servers:write"},
	})

	claims, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "steve", claims.Username)
	require.Equal(t, []string{"servers:write"}, claims.Scopes)
	require.NoError(t, claims.ValidateExpiry())
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	priv, _ := newKeyPair(t)
	_, otherPEM := newKeyPair(t)

	v, err := NewEdDSAVerifier(otherPEM, "")
	require.NoError(t, err)

	token := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	priv, pemKey := newKeyPair(t)
	v, err := NewEdDSAVerifier(pemKey, "")
	require.NoError(t, err)

	token := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	priv, pemKey := newKeyPair(t)
	v, err := NewEdDSAVerifier(pemKey, "craftboard-accounts")
	require.NoError(t, err)

	token := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, pemKey := newKeyPair(t)
	v, err := NewEdDSAVerifier(pemKey, "")
	require.NoError(t, err)

	_, err = v.Verify("not.a.token")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNewEdDSAVerifierRejectsBadKeys(t *testing.T) {
	t.Parallel()

	_, err := NewEdDSAVerifier([]byte("junk"), "")
	require.ErrorIs(t, err, ErrInvalidKey)

	// RSA key is a valid PKIX blob but the wrong key type.
	_, err = NewEdDSAVerifier(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte{0x30}}), "")
	require.ErrorIs(t, err, ErrInvalidKey)
}
