package cipherlink

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"

	"github.com/cipherlink/client-go/internal/crypto"
)

// StorageSaltSize is the salt length StorageKeyFromPassphrase expects.
const StorageSaltSize = 16

// StoredBlob is the serialized form of a locally protected secret:
// secretbox ciphertext plus the random nonce it was sealed under, both
// standard base64.
type StoredBlob struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// EncryptForStorage seals plaintext under a 32-byte symmetric key with a
// fresh random 24-byte nonce. Used to protect private key material and
// other sensitive blobs before they are handed to a key-value store.
func EncryptForStorage(plaintext, key []byte) (*StoredBlob, error) {
	ciphertext, nonce, err := crypto.SealSecretbox(plaintext, key)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}
	return &StoredBlob{
		Ciphertext: crypto.ToBase64(ciphertext),
		Nonce:      crypto.ToBase64(nonce),
	}, nil
}

// DecryptFromStorage authenticates and opens a stored blob. A wrong key
// or tampered blob yields ErrDecryptionFailed; the ciphertext is never
// surfaced as plaintext.
func DecryptFromStorage(blob *StoredBlob, key []byte) ([]byte, error) {
	if blob == nil {
		return nil, ErrMalformedMessage
	}
	ciphertext, err := crypto.FromBase64(blob.Ciphertext)
	if err != nil {
		return nil, &EncodingError{Field: "ciphertext", Err: err}
	}
	nonce, err := crypto.FromBase64(blob.Nonce)
	if err != nil {
		return nil, &EncodingError{Field: "nonce", Err: err}
	}

	plaintext, ok := crypto.OpenSecretbox(ciphertext, nonce, key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// StorageKeyFromPassword derives a storage key as a single unsalted
// SHA-256 of the password, matching the deployed clients so existing
// vaults keep decrypting.
//
// A fast unsalted hash is cheap to brute-force offline. New vaults
// should prefer StorageKeyFromPassphrase.
func StorageKeyFromPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

// StorageKeyFromPassphrase derives a storage key with Argon2id over a
// random per-vault salt. The salt is not secret; store it beside the
// blob and pass the same salt to derive the key again.
func StorageKeyFromPassphrase(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != StorageSaltSize {
		return nil, wrapCryptoErr(crypto.ErrInvalidSaltSize)
	}
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, crypto.KeySize), nil
}
