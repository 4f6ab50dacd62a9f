package cipherlink

import (
	"errors"
	"strings"
	"testing"
)

func mustKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	kp, err := GenerateEncryptionKeyPair()
	if err != nil {
		t.Fatalf("GenerateEncryptionKeyPair() error = %v", err)
	}
	return kp
}

func TestEncryptDecrypt_V1(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	msg, err := Encrypt("hello bob", bob.PublicKey, alice.PrivateKey, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if msg.Version != VersionV1 {
		t.Errorf("Version = %q, want %q", msg.Version, VersionV1)
	}
	if msg.SenderPublicKey != "" || msg.EphemeralPublicKey != "" {
		t.Error("v1 message carries key fields it must not")
	}

	got, err := Decrypt(msg, alice.PublicKey, bob.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "hello bob" {
		t.Errorf("Decrypt() = %q, want %q", got, "hello bob")
	}
}

func TestEncryptDecrypt_V2(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	msg, err := Encrypt("hello again", bob.PublicKey, alice.PrivateKey, alice.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if msg.Version != VersionV2 {
		t.Errorf("Version = %q, want %q", msg.Version, VersionV2)
	}
	if msg.SenderPublicKey == "" {
		t.Error("v2 message missing embedded sender key")
	}

	got, err := Decrypt(msg, alice.PublicKey, bob.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "hello again" {
		t.Errorf("Decrypt() = %q, want %q", got, "hello again")
	}
}

// An empty plaintext is a legitimate message: the v2 wrapper must peel
// away to "" rather than leak through as raw wrapper JSON.
func TestEncryptDecrypt_V2EmptyPlaintext(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	msg, err := Encrypt("", bob.PublicKey, alice.PrivateKey, alice.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := Decrypt(msg, alice.PublicKey, bob.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "" {
		t.Errorf("Decrypt() = %q (%d bytes), want empty string", got, len(got))
	}
}

// A v2 message must decrypt even when the recipient's cached key for the
// sender is stale: the embedded key wins.
func TestDecrypt_V2StaleFallbackKey(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)
	stale := mustKeyPair(t)

	msg, err := Encrypt("rotated keys", bob.PublicKey, alice.PrivateKey, alice.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := Decrypt(msg, stale.PublicKey, bob.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt() with stale fallback error = %v", err)
	}
	if got != "rotated keys" {
		t.Errorf("Decrypt() = %q, want %q", got, "rotated keys")
	}
}

func TestDecrypt_V1WrongKey(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)
	mallory := mustKeyPair(t)

	msg, err := Encrypt("secret", bob.PublicKey, alice.PrivateKey, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := Decrypt(msg, mallory.PublicKey, bob.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("wrong sender key: expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := Decrypt(msg, alice.PublicKey, mallory.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("wrong recipient key: expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := Decrypt(msg, nil, bob.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("no sender key: expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	msg, err := Encrypt("integrity matters", bob.PublicKey, alice.PrivateKey, alice.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Flip a character inside the base64 ciphertext.
	ct := []byte(msg.Ciphertext)
	if ct[3] == 'A' {
		ct[3] = 'B'
	} else {
		ct[3] = 'A'
	}
	msg.Ciphertext = string(ct)

	if _, err := Decrypt(msg, alice.PublicKey, bob.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncrypt_FreshNoncePerMessage(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	first, err := Encrypt("same text", bob.PublicKey, alice.PrivateKey, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	second, err := Encrypt("same text", bob.PublicKey, alice.PrivateKey, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if first.Nonce == second.Nonce {
		t.Error("two encryptions reuse a nonce")
	}
	if first.Ciphertext == second.Ciphertext {
		t.Error("two encryptions of the same plaintext produce identical ciphertext")
	}
}

func TestEncryptDecrypt_ForwardSecrecy(t *testing.T) {
	bob := mustKeyPair(t)

	msg, err := EncryptWithForwardSecrecy("burn after reading", bob.PublicKey)
	if err != nil {
		t.Fatalf("EncryptWithForwardSecrecy() error = %v", err)
	}
	if msg.EphemeralPublicKey == "" {
		t.Fatal("forward-secrecy message missing ephemeral key")
	}
	if msg.Version != "" || msg.SenderPublicKey != "" {
		t.Error("forward-secrecy message carries standard-mode fields")
	}

	got, err := DecryptWithForwardSecrecy(msg, bob.PrivateKey)
	if err != nil {
		t.Fatalf("DecryptWithForwardSecrecy() error = %v", err)
	}
	if got != "burn after reading" {
		t.Errorf("DecryptWithForwardSecrecy() = %q, want %q", got, "burn after reading")
	}
}

// The two modes never open each other's ciphertexts.
func TestModeIsolation(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	standard, err := Encrypt("standard", bob.PublicKey, alice.PrivateKey, alice.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	fs, err := EncryptWithForwardSecrecy("ephemeral", bob.PublicKey)
	if err != nil {
		t.Fatalf("EncryptWithForwardSecrecy() error = %v", err)
	}

	if _, err := DecryptWithForwardSecrecy(standard, bob.PrivateKey); !errors.Is(err, ErrMissingEphemeralKey) {
		t.Errorf("standard message in FS decrypt: expected ErrMissingEphemeralKey, got %v", err)
	}
	if _, err := Decrypt(fs, alice.PublicKey, bob.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("FS message in standard decrypt: expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptWithForwardSecrecy_WrongRecipient(t *testing.T) {
	bob := mustKeyPair(t)
	eve := mustKeyPair(t)

	msg, err := EncryptWithForwardSecrecy("not for eve", bob.PublicKey)
	if err != nil {
		t.Fatalf("EncryptWithForwardSecrecy() error = %v", err)
	}
	if _, err := DecryptWithForwardSecrecy(msg, eve.PrivateKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncrypt_EdgeCasePlaintexts(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"unicode", "héllo wörld é世界 🔐"},
		{"long", strings.Repeat("a", 1<<16)},
		{"json lookalike", `{"m":"not a wrapper"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Encrypt(tt.plaintext, bob.PublicKey, alice.PrivateKey, alice.PublicKey)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			got, err := Decrypt(msg, alice.PublicKey, bob.PrivateKey)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if got != tt.plaintext {
				t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(tt.plaintext))
			}
		})
	}
}

func TestEncrypt_InvalidKeys(t *testing.T) {
	alice := mustKeyPair(t)
	bob := mustKeyPair(t)

	if _, err := Encrypt("x", bob.PublicKey[:16], alice.PrivateKey, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short recipient key: expected ErrInvalidKey, got %v", err)
	}
	if _, err := Encrypt("x", bob.PublicKey, nil, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("nil sender private key: expected ErrInvalidKey, got %v", err)
	}
	if _, err := EncryptWithForwardSecrecy("x", make([]byte, 7)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short recipient key: expected ErrInvalidKey, got %v", err)
	}
}

// Message histories survive key rotation: old v1 traffic opens with the
// cached key, new v2 traffic with the embedded one.
func TestDecrypt_MixedVersionHistory(t *testing.T) {
	bob := mustKeyPair(t)
	aliceOld := mustKeyPair(t)
	aliceNew := mustKeyPair(t)

	oldMsg, err := Encrypt("before rotation", bob.PublicKey, aliceOld.PrivateKey, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	newMsg, err := Encrypt("after rotation", bob.PublicKey, aliceNew.PrivateKey, aliceNew.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Bob's cache still holds Alice's old key.
	got, err := Decrypt(oldMsg, aliceOld.PublicKey, bob.PrivateKey)
	if err != nil || got != "before rotation" {
		t.Errorf("v1 message: got (%q, %v)", got, err)
	}
	got, err = Decrypt(newMsg, aliceOld.PublicKey, bob.PrivateKey)
	if err != nil || got != "after rotation" {
		t.Errorf("v2 message with stale cache: got (%q, %v)", got, err)
	}
}
