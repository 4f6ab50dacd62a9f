package crypto

import (
	"golang.org/x/crypto/nacl/secretbox"
)

// SealSecretbox encrypts plaintext under a 32-byte symmetric key with a
// fresh random nonce, returning ciphertext and nonce separately.
func SealSecretbox(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	k, err := key32(key)
	if err != nil {
		return nil, nil, err
	}
	n, err := NewNonce()
	if err != nil {
		return nil, nil, err
	}
	ciphertext = secretbox.Seal(nil, plaintext, n, k)
	return ciphertext, n[:], nil
}

// OpenSecretbox authenticates and decrypts a secretbox ciphertext.
// ok is false when the key is wrong or the ciphertext was tampered with.
func OpenSecretbox(ciphertext, nonce, key []byte) (plaintext []byte, ok bool) {
	k, err := key32(key)
	if err != nil {
		return nil, false
	}
	if len(nonce) != NonceSize {
		return nil, false
	}
	var n [NonceSize]byte
	copy(n[:], nonce)
	return secretbox.Open(nil, ciphertext, &n, k)
}
