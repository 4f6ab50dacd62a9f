package crypto

import (
	"crypto/ed25519"

	"golang.org/x/crypto/nacl/box"
)

const (
	// KeySize is the size of an X25519 public or private key in bytes.
	KeySize = 32
	// NonceSize is the size of a box/secretbox nonce in bytes.
	NonceSize = 24
	// Overhead is the number of bytes the Poly1305 tag adds to a plaintext.
	Overhead = box.Overhead

	// SigningPublicKeySize is the size of an Ed25519 public key in bytes.
	SigningPublicKeySize = ed25519.PublicKeySize
	// SigningPrivateKeySize is the size of an Ed25519 private key in bytes.
	SigningPrivateKeySize = ed25519.PrivateKeySize
	// SignatureSize is the size of an Ed25519 detached signature in bytes.
	SignatureSize = ed25519.SignatureSize

	// FingerprintPrefixSize is the number of digest bytes a public-key
	// fingerprint keeps before formatting.
	FingerprintPrefixSize = 16
)
