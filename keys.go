package cipherlink

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cipherlink/client-go/internal/crypto"
)

// Key algorithm tags carried by KeyPair.
const (
	// AlgorithmX25519 marks a key-agreement pair used for message encryption.
	AlgorithmX25519 = "x25519"
	// AlgorithmEd25519 marks a signing pair used for identity keys.
	AlgorithmEd25519 = "ed25519"
)

// DefaultOneTimePrekeyCount is the number of one-time prekeys a bundle
// carries when the caller does not ask for a specific count.
const DefaultOneTimePrekeyCount = 10

// KeyPair holds one asymmetric key pair. The private half never crosses
// the transport boundary; persist it only through the storage codec.
type KeyPair struct {
	// Algorithm is AlgorithmX25519 or AlgorithmEd25519.
	Algorithm string
	// PublicKey is the raw public key bytes.
	PublicKey []byte
	// PrivateKey is the raw private key bytes.
	PrivateKey []byte
}

// PublicKeyBase64 returns the public key in the wire encoding.
func (k *KeyPair) PublicKeyBase64() string {
	return crypto.ToBase64(k.PublicKey)
}

// KeyBundle is the public, uploadable half of a user's key material.
// The relay hands it to peers who want to initiate contact; each
// one-time prekey is single-use, with reuse accounting enforced by the
// relay rather than re-validated here.
type KeyBundle struct {
	// PublicKey is the long-term X25519 encryption key.
	PublicKey string `json:"publicKey"`
	// IdentityKey is the Ed25519 identity (signing) key.
	IdentityKey string `json:"identityKey"`
	// SignedPrekey is an X25519 prekey signed by the identity key.
	SignedPrekey string `json:"signedPrekey"`
	// SignedPrekeySignature is the detached Ed25519 signature over the
	// signed prekey's public bytes.
	SignedPrekeySignature string `json:"signedPrekeySignature"`
	// OneTimePrekeys are single-use X25519 prekeys.
	OneTimePrekeys []string `json:"oneTimePrekeys"`
}

// BundlePrivateKeys is the private counterpart of a KeyBundle. It is
// never uploaded; callers persist it through the storage codec.
type BundlePrivateKeys struct {
	EncryptionKey  *KeyPair
	IdentityKey    *KeyPair
	SignedPrekey   *KeyPair
	OneTimePrekeys []*KeyPair
}

// GenerateEncryptionKeyPair creates a fresh X25519 key pair.
// It fails only when the CSPRNG does, which is fatal.
func GenerateEncryptionKeyPair() (*KeyPair, error) {
	pub, priv, err := crypto.GenerateX25519()
	if err != nil {
		return nil, wrapCryptoErr(err)
	}
	return &KeyPair{Algorithm: AlgorithmX25519, PublicKey: pub, PrivateKey: priv}, nil
}

// GenerateSigningKeyPair creates a fresh Ed25519 key pair.
func GenerateSigningKeyPair() (*KeyPair, error) {
	pub, priv, err := crypto.GenerateEd25519()
	if err != nil {
		return nil, wrapCryptoErr(err)
	}
	return &KeyPair{Algorithm: AlgorithmEd25519, PublicKey: pub, PrivateKey: priv}, nil
}

// GenerateKeyBundle creates a complete key bundle: a long-term encryption
// pair, an identity signing pair, a signed prekey whose public bytes carry
// a detached signature by the identity key, and oneTimeCount single-use
// prekeys. A non-positive count falls back to DefaultOneTimePrekeyCount.
//
// The returned KeyBundle is safe to upload; the BundlePrivateKeys is not.
func GenerateKeyBundle(oneTimeCount int) (*KeyBundle, *BundlePrivateKeys, error) {
	if oneTimeCount <= 0 {
		oneTimeCount = DefaultOneTimePrekeyCount
	}

	encryption, err := GenerateEncryptionKeyPair()
	if err != nil {
		return nil, nil, err
	}
	identity, err := GenerateSigningKeyPair()
	if err != nil {
		return nil, nil, err
	}
	signedPrekey, err := GenerateEncryptionKeyPair()
	if err != nil {
		return nil, nil, err
	}

	signature, err := crypto.Sign(identity.PrivateKey, signedPrekey.PublicKey)
	if err != nil {
		return nil, nil, wrapCryptoErr(err)
	}

	oneTime := make([]*KeyPair, 0, oneTimeCount)
	oneTimePublic := make([]string, 0, oneTimeCount)
	for i := 0; i < oneTimeCount; i++ {
		pair, err := GenerateEncryptionKeyPair()
		if err != nil {
			return nil, nil, err
		}
		oneTime = append(oneTime, pair)
		oneTimePublic = append(oneTimePublic, pair.PublicKeyBase64())
	}

	bundle := &KeyBundle{
		PublicKey:             encryption.PublicKeyBase64(),
		IdentityKey:           identity.PublicKeyBase64(),
		SignedPrekey:          signedPrekey.PublicKeyBase64(),
		SignedPrekeySignature: crypto.ToBase64(signature),
		OneTimePrekeys:        oneTimePublic,
	}
	private := &BundlePrivateKeys{
		EncryptionKey:  encryption,
		IdentityKey:    identity,
		SignedPrekey:   signedPrekey,
		OneTimePrekeys: oneTime,
	}
	return bundle, private, nil
}

// VerifyBundleSignature checks that a fetched bundle's signed prekey
// really was signed by its identity key. Peers should reject bundles
// that fail this check before encrypting anything to them.
func VerifyBundleSignature(bundle *KeyBundle) bool {
	if bundle == nil {
		return false
	}
	identityKey, err := crypto.FromBase64(bundle.IdentityKey)
	if err != nil {
		return false
	}
	signedPrekey, err := crypto.FromBase64(bundle.SignedPrekey)
	if err != nil {
		return false
	}
	signature, err := crypto.FromBase64(bundle.SignedPrekeySignature)
	if err != nil {
		return false
	}
	return crypto.Verify(identityKey, signedPrekey, signature)
}

// DerivePublicKeyFromPrivate recomputes the public key for a private key,
// dispatching on length: 32 bytes is X25519, 64 bytes is Ed25519.
func DerivePublicKeyFromPrivate(priv []byte) ([]byte, error) {
	switch len(priv) {
	case crypto.KeySize:
		pub, err := crypto.DeriveX25519Public(priv)
		return pub, wrapCryptoErr(err)
	case crypto.SigningPrivateKeySize:
		pub, err := crypto.DeriveEd25519Public(priv)
		return pub, wrapCryptoErr(err)
	default:
		return nil, fmt.Errorf("%w: unsupported private key length %d", ErrInvalidKey, len(priv))
	}
}

// VerifyKeyPair reports whether pub is the public key belonging to priv.
// Malformed input yields false, never an error or panic.
func VerifyKeyPair(priv, pub []byte) bool {
	derived, err := DerivePublicKeyFromPrivate(priv)
	if err != nil {
		return false
	}
	return bytes.Equal(derived, pub)
}

// wrapCryptoErr converts internal crypto errors to public sentinels so
// errors.Is works against the package surface.
func wrapCryptoErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, crypto.ErrRandomSource):
		return ErrRandomSource
	case errors.Is(err, crypto.ErrInvalidPrivateKeySize),
		errors.Is(err, crypto.ErrInvalidPublicKeySize),
		errors.Is(err, crypto.ErrInvalidKeySize),
		errors.Is(err, crypto.ErrInvalidNonceSize),
		errors.Is(err, crypto.ErrInvalidSaltSize):
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return err
}
