package cipherlink

import (
	"strings"
	"testing"
)

func TestFingerprint_Format(t *testing.T) {
	kp := mustKeyPair(t)

	fp := Fingerprint(kp.PublicKey)
	blocks := strings.Split(fp, " ")
	if len(blocks) != 8 {
		t.Fatalf("fingerprint has %d blocks, want 8: %q", len(blocks), fp)
	}
	for _, block := range blocks {
		if len(block) != 4 {
			t.Errorf("block %q has length %d, want 4", block, len(block))
		}
		for _, r := range block {
			if !strings.ContainsRune("0123456789ABCDEF", r) {
				t.Errorf("block %q contains non-hex or lowercase rune %q", block, r)
			}
		}
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	kp := mustKeyPair(t)

	if Fingerprint(kp.PublicKey) != Fingerprint(kp.PublicKey) {
		t.Error("same key produced different fingerprints")
	}

	other := mustKeyPair(t)
	if Fingerprint(kp.PublicKey) == Fingerprint(other.PublicKey) {
		t.Error("distinct keys produced the same fingerprint")
	}
}

func TestVerifyFingerprint(t *testing.T) {
	kp := mustKeyPair(t)
	fp := Fingerprint(kp.PublicKey)
	other := Fingerprint(mustKeyPair(t).PublicKey)

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", fp, fp, true},
		{"case insensitive", fp, strings.ToLower(fp), true},
		{"spaces stripped", fp, strings.ReplaceAll(fp, " ", ""), true},
		{"extra whitespace", fp, "  " + strings.ReplaceAll(fp, " ", "\t") + "\n", true},
		{"different keys", fp, other, false},
		{"empty left", "", fp, false},
		{"empty right", fp, "", false},
		{"both empty", "", "", false},
		{"whitespace only", "   ", fp, false},
		{"truncated", fp, fp[:len(fp)-5], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyFingerprint(tt.a, tt.b); got != tt.want {
				t.Errorf("VerifyFingerprint(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
