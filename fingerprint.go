package cipherlink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/cipherlink/client-go/internal/crypto"
)

// Fingerprint derives a human-verifiable digest of a public key: the
// SHA-256 of the raw key bytes, truncated to 16 bytes, hex-encoded
// uppercase and grouped into 4-character blocks.
//
// Equal keys always produce equal fingerprints. The result is pure
// display material and safe to show or transmit anywhere.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	digest := strings.ToUpper(hex.EncodeToString(sum[:crypto.FingerprintPrefixSize]))

	blocks := make([]string, 0, len(digest)/4)
	for i := 0; i < len(digest); i += 4 {
		blocks = append(blocks, digest[i:i+4])
	}
	return strings.Join(blocks, " ")
}

// VerifyFingerprint compares two fingerprints the way people read them
// to each other: whitespace and case are ignored. The comparison is
// constant-time.
//
// This is the out-of-band defense against active key substitution, which
// encryption alone cannot detect.
func VerifyFingerprint(a, b string) bool {
	na, nb := normalizeFingerprint(a), normalizeFingerprint(b)
	if na == "" || nb == "" {
		return false
	}
	return hmac.Equal([]byte(na), []byte(nb))
}

func normalizeFingerprint(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}
