package devsim

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/pkg/cryptox"
	"github.com/keybridge-labs/keybridge/pkg/jwtx"
)

// credentialSigner mints Ed25519-signed JWT credentials. The key either
// comes from configuration or is generated at startup, which means restart
// invalidates previously minted credentials. That is fine for a simulator.
type credentialSigner struct {
	signer *jwtx.EdDSASigner
	ttl    time.Duration
}

// newCredentialSigner builds a signer from a PKCS8 PEM key, generating an
// ephemeral key when pemKey is empty.
func newCredentialSigner(pemKey []byte, ttl time.Duration) (*credentialSigner, error) {
	if len(pemKey) == 0 {
		generated, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		pemKey = generated
	}

	key, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signing key has no ed25519 public key")
	}

	// Key identifier derived from the public key, so restarts with the
	// same configured key keep a stable kid.
	kid := cryptox.FingerprintToken(string(pub))[:12]

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, fmt.Errorf("build signer: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return nil, fmt.Errorf("validate signer: %w", err)
	}

	return &credentialSigner{signer: signer, ttl: ttl}, nil
}

// Mint issues a credential for the account. sessionID lands in the sid
// claim and authority in the issuer claim.
func (s *credentialSigner) Mint(rec AccountRecord, sessionID, authority, scope string, now time.Time) (domain.Credential, error) {
	claims := jwtx.NewCredentialClaims(
		rec.ID, sessionID,
		scope, authority,
		rec.Username, rec.DisplayName,
		s.ttl, now,
	)

	signed, err := s.signer.Sign(claims)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("sign credential: %w", err)
	}

	return domain.Credential{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// PublicKey exposes the verification key so tests and diagnostics can check
// minted credentials.
func (s *credentialSigner) PublicKey() ed25519.PublicKey {
	return s.signer.PublicKey()
}
