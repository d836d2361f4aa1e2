package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// EdDSAVerifier validates JWTs signed using EdDSA (Ed25519) against a single
// known public key.
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	issuer string
	leeway time.Duration
}

// NewVerifierEdDSA creates a verifier for tokens minted with the matching
// private key. Empty issuer means "don't care"; leeway allows small clock
// skew when validating exp/nbf.
func NewVerifierEdDSA(pub ed25519.PublicKey, issuer string, leeway time.Duration) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, issuer: issuer, leeway: leeway}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *EdDSAVerifier) Verify(tokenStr string) (*Claims, error) {
	// The parser checks exp/nbf itself, so it needs the same leeway the
	// claim helpers apply.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithLeeway(v.leeway),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("jwtx: invalid token claims")
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.leeway); err != nil {
		return nil, err
	}

	return claims, nil
}
