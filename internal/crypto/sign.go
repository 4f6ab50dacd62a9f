package crypto

import (
	"crypto/ed25519"
	"fmt"
)

// GenerateEd25519 creates a new Ed25519 signing key pair from the CSPRNG.
func GenerateEd25519() (pub, priv []byte, err error) {
	pk, sk, err := ed25519.GenerateKey(randReader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return pk, sk, nil
}

// Sign produces a detached Ed25519 signature over msg.
func Sign(priv, msg []byte) ([]byte, error) {
	if len(priv) != SigningPrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}
	return ed25519.Sign(ed25519.PrivateKey(priv), msg), nil
}

// Verify reports whether sig is a valid Ed25519 signature over msg.
// Malformed keys or signatures verify as false, never panic.
func Verify(pub, msg, sig []byte) bool {
	if len(pub) != SigningPublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// DeriveEd25519Public extracts the public half of an Ed25519 private key.
func DeriveEd25519Public(priv []byte) ([]byte, error) {
	if len(priv) != SigningPrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}
	return []byte(ed25519.PrivateKey(priv).Public().(ed25519.PublicKey)), nil
}
