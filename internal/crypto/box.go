package crypto

import (
	"golang.org/x/crypto/nacl/box"
)

// SealBox encrypts plaintext to peerPub from priv using an authenticated
// box construction (X25519 agreement + XSalsa20-Poly1305). A fresh random
// nonce is generated per call and returned alongside the ciphertext.
func SealBox(plaintext, peerPub, priv []byte) (ciphertext, nonce []byte, err error) {
	pubKey, err := key32(peerPub)
	if err != nil {
		return nil, nil, ErrInvalidPublicKeySize
	}
	privKey, err := key32(priv)
	if err != nil {
		return nil, nil, ErrInvalidPrivateKeySize
	}
	n, err := NewNonce()
	if err != nil {
		return nil, nil, err
	}
	ciphertext = box.Seal(nil, plaintext, n, pubKey, privKey)
	return ciphertext, n[:], nil
}

// OpenBox authenticates and decrypts a box ciphertext. ok is false on any
// failure: wrong keys, truncated nonce, or a tampered ciphertext.
func OpenBox(ciphertext, nonce, peerPub, priv []byte) (plaintext []byte, ok bool) {
	if len(nonce) != NonceSize {
		return nil, false
	}
	pubKey, err := key32(peerPub)
	if err != nil {
		return nil, false
	}
	privKey, err := key32(priv)
	if err != nil {
		return nil, false
	}
	var n [NonceSize]byte
	copy(n[:], nonce)
	return box.Open(nil, ciphertext, &n, pubKey, privKey)
}
