package crypto

import "errors"

var (
	// ErrInvalidPrivateKeySize is returned when a private key has the wrong length.
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")

	// ErrInvalidPublicKeySize is returned when a public key has the wrong length.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidKeySize is returned when a symmetric key has the wrong length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce has the wrong length.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidSaltSize is returned when a passphrase salt has the wrong length.
	ErrInvalidSaltSize = errors.New("invalid salt size")

	// ErrRandomSource is returned when the CSPRNG cannot supply bytes.
	// This is fatal for key and nonce generation.
	ErrRandomSource = errors.New("random source failure")
)
