// Package crypto provides the cryptographic primitives for the CipherLink
// message protocol.
//
// # Algorithm Suite
//
//   - X25519 (RFC 7748): elliptic-curve Diffie-Hellman key agreement for
//     message encryption key pairs.
//
//   - Ed25519 (RFC 8032): signatures binding signed prekeys to an
//     identity key.
//
//   - XSalsa20-Poly1305 "box": authenticated public-key encryption
//     combining X25519 agreement with an AEAD, used for all message
//     ciphertexts. Requires a unique 24-byte nonce per sealing.
//
//   - XSalsa20-Poly1305 "secretbox": symmetric authenticated encryption
//     for at-rest protection of key material and other local blobs.
//
// # Critical Security Notes
//
// Nonces MUST be freshly generated from a CSPRNG for every seal. Nonce
// reuse under the same key pair breaks confidentiality and allows forgery.
//
// OpenBox and OpenSecretbox return ok=false on any authentication
// failure. Callers must treat a failed open as "no plaintext" and never
// fall back to interpreting the ciphertext bytes.
package crypto
