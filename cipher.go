package cipherlink

import (
	"encoding/json"

	"github.com/cipherlink/client-go/internal/crypto"
)

// v2Wrapper is the plaintext wrapper of a v2 message. Embedding the
// sender's public key makes the recipient independent of possibly stale
// cached keys: the embedded key is authoritative.
type v2Wrapper struct {
	M   string `json:"m"`
	SPK string `json:"spk"`
}

// Encrypt seals plaintext to recipientPub with authenticated public-key
// encryption (X25519 + XSalsa20-Poly1305) under a fresh random nonce.
//
// With senderPub nil, the plaintext is sealed as-is and tagged v1. With
// senderPub set, the plaintext is wrapped together with the sender's
// public key and tagged v2, so the recipient can decrypt without knowing
// the sender's current key in advance.
func Encrypt(plaintext string, recipientPub, senderPriv, senderPub []byte) (*EncryptedMessage, error) {
	payload := []byte(plaintext)
	v2 := len(senderPub) > 0
	if v2 {
		wrapped, err := json.Marshal(v2Wrapper{M: plaintext, SPK: crypto.ToBase64(senderPub)})
		if err != nil {
			return nil, &EncodingError{Field: "plaintext wrapper", Err: err}
		}
		payload = wrapped
	}

	ciphertext, nonce, err := crypto.SealBox(payload, recipientPub, senderPriv)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}

	if v2 {
		return envelopeV2{ciphertext: ciphertext, nonce: nonce, senderKey: senderPub}.wire(), nil
	}
	return envelopeV1{ciphertext: ciphertext, nonce: nonce}.wire(), nil
}

// Decrypt authenticates and opens msg with recipientPriv.
//
// Key resolution prefers the sender key embedded in a v2 message over
// fallbackSenderPub; when the first candidate fails to authenticate, the
// other is tried once. ErrDecryptionFailed means the message is
// undisplayable; it never stands for empty content, and no partial
// plaintext is ever returned.
func Decrypt(msg *EncryptedMessage, fallbackSenderPub, recipientPriv []byte) (string, error) {
	env, err := parseEnvelope(msg)
	if err != nil {
		return "", err
	}

	var ciphertext, nonce []byte
	var candidates [][]byte
	switch e := env.(type) {
	case envelopeV2:
		ciphertext, nonce = e.ciphertext, e.nonce
		candidates = [][]byte{e.senderKey, fallbackSenderPub}
	case envelopeV1:
		ciphertext, nonce = e.ciphertext, e.nonce
		candidates = [][]byte{fallbackSenderPub}
	default:
		// Forward-secrecy ciphertexts are not decryptable here.
		return "", ErrDecryptionFailed
	}

	for _, senderPub := range candidates {
		if len(senderPub) == 0 {
			continue
		}
		plaintext, ok := crypto.OpenBox(ciphertext, nonce, senderPub, recipientPriv)
		if !ok {
			continue
		}
		return unwrapPlaintext(plaintext), nil
	}
	return "", ErrDecryptionFailed
}

// unwrapPlaintext peels the v2 wrapper when present; anything that does
// not parse as a complete wrapper is returned verbatim as v1 plaintext.
// Presence of the fields decides, not their values: an empty "m" is
// still a v2 message carrying empty content.
func unwrapPlaintext(plaintext []byte) string {
	var wrapper struct {
		M   *string `json:"m"`
		SPK string  `json:"spk"`
	}
	if err := json.Unmarshal(plaintext, &wrapper); err == nil && wrapper.M != nil && wrapper.SPK != "" {
		return *wrapper.M
	}
	return string(plaintext)
}

// EncryptWithForwardSecrecy seals plaintext under a fresh single-use
// X25519 pair and ships only the public half. The private half is zeroed
// before return; compromising the sender's long-term keys later cannot
// recover this message.
func EncryptWithForwardSecrecy(plaintext string, recipientPub []byte) (*EncryptedMessage, error) {
	ephemeralPub, ephemeralPriv, err := crypto.GenerateX25519()
	if err != nil {
		return nil, wrapCryptoErr(err)
	}

	ciphertext, nonce, err := crypto.SealBox([]byte(plaintext), recipientPub, ephemeralPriv)
	zero(ephemeralPriv)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}

	return envelopeForwardSecrecy{ciphertext: ciphertext, nonce: nonce, ephemeralKey: ephemeralPub}.wire(), nil
}

// DecryptWithForwardSecrecy opens a forward-secrecy message with
// recipientPriv. A message without an ephemeral public key fails closed
// with ErrMissingEphemeralKey; ciphertexts from Encrypt never decrypt
// here and vice versa.
func DecryptWithForwardSecrecy(msg *EncryptedMessage, recipientPriv []byte) (string, error) {
	env, err := parseEnvelope(msg)
	if err != nil {
		return "", err
	}
	fs, ok := env.(envelopeForwardSecrecy)
	if !ok {
		return "", ErrMissingEphemeralKey
	}

	plaintext, ok := crypto.OpenBox(fs.ciphertext, fs.nonce, fs.ephemeralKey, recipientPriv)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// zero wipes key material once it is no longer needed.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
