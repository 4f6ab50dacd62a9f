package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/dh/x25519"
)

// randReader is the random source used for key and nonce generation.
// It defaults to crypto/rand but can be overridden for testing.
var randReader io.Reader = rand.Reader

// GenerateX25519 creates a new X25519 key pair from the CSPRNG.
func GenerateX25519() (pub, priv []byte, err error) {
	var secret, public x25519.Key
	if _, err := io.ReadFull(randReader, secret[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	x25519.KeyGen(&public, &secret)
	return public[:], secret[:], nil
}

// DeriveX25519Public recomputes the public key for an X25519 private key.
func DeriveX25519Public(priv []byte) ([]byte, error) {
	if len(priv) != KeySize {
		return nil, ErrInvalidPrivateKeySize
	}
	var secret, public x25519.Key
	copy(secret[:], priv)
	x25519.KeyGen(&public, &secret)
	return public[:], nil
}

// NewNonce returns a fresh 24-byte nonce from the CSPRNG.
// Nonces are never reused or counter-derived.
func NewNonce() (*[NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(randReader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return &nonce, nil
}

// key32 copies a 32-byte slice into the fixed-size array form the NaCl
// constructions take.
func key32(b []byte) (*[KeySize]byte, error) {
	if len(b) != KeySize {
		return nil, ErrInvalidKeySize
	}
	var k [KeySize]byte
	copy(k[:], b)
	return &k, nil
}
