package cipherlink

import (
	"github.com/cipherlink/client-go/internal/crypto"
)

// Message protocol versions on the wire.
const (
	// VersionV1 is a plain box ciphertext with no embedded sender key.
	VersionV1 = "v1"
	// VersionV2 embeds the sender's public key inside the plaintext
	// wrapper, making stale cached keys on the recipient side harmless.
	VersionV2 = "v2"
)

// EncryptedMessage is the flat wire shape of an encrypted payload. All
// binary fields are standard base64. The three modes are mutually
// exclusive: Version is "v2" iff SenderPublicKey is set, and
// EphemeralPublicKey appears only in forward-secrecy mode.
type EncryptedMessage struct {
	Ciphertext         string `json:"ciphertext"`
	Nonce              string `json:"nonce"`
	EphemeralPublicKey string `json:"ephemeralPublicKey,omitempty"`
	SenderPublicKey    string `json:"senderPublicKey,omitempty"`
	Version            string `json:"version,omitempty"`
}

// envelope is the internal tagged-variant form of an EncryptedMessage.
// Parsing the flat wire JSON into one of these removes per-field presence
// checks from the decrypt paths: each variant carries only what is valid
// for its mode.
type envelope interface {
	wire() *EncryptedMessage
}

// envelopeV1 is a plain ciphertext decryptable with a caller-supplied
// sender key.
type envelopeV1 struct {
	ciphertext []byte
	nonce      []byte
}

// envelopeV2 additionally carries the sender's public key, recovered
// authoritatively from the message itself.
type envelopeV2 struct {
	ciphertext []byte
	nonce      []byte
	senderKey  []byte
}

// envelopeForwardSecrecy carries a single-use ephemeral public key whose
// private half the sender discarded after sealing.
type envelopeForwardSecrecy struct {
	ciphertext   []byte
	nonce        []byte
	ephemeralKey []byte
}

func (e envelopeV1) wire() *EncryptedMessage {
	return &EncryptedMessage{
		Ciphertext: crypto.ToBase64(e.ciphertext),
		Nonce:      crypto.ToBase64(e.nonce),
		Version:    VersionV1,
	}
}

func (e envelopeV2) wire() *EncryptedMessage {
	return &EncryptedMessage{
		Ciphertext:      crypto.ToBase64(e.ciphertext),
		Nonce:           crypto.ToBase64(e.nonce),
		SenderPublicKey: crypto.ToBase64(e.senderKey),
		Version:         VersionV2,
	}
}

func (e envelopeForwardSecrecy) wire() *EncryptedMessage {
	return &EncryptedMessage{
		Ciphertext:         crypto.ToBase64(e.ciphertext),
		Nonce:              crypto.ToBase64(e.nonce),
		EphemeralPublicKey: crypto.ToBase64(e.ephemeralKey),
	}
}

// parseEnvelope converts the flat wire shape into its tagged variant,
// rejecting mixed or inconsistent field combinations as malformed.
func parseEnvelope(msg *EncryptedMessage) (envelope, error) {
	if msg == nil || msg.Ciphertext == "" || msg.Nonce == "" {
		return nil, ErrMalformedMessage
	}
	switch msg.Version {
	case "", VersionV1, VersionV2:
	default:
		return nil, ErrMalformedMessage
	}
	if msg.EphemeralPublicKey != "" && msg.SenderPublicKey != "" {
		return nil, ErrMalformedMessage
	}
	// Version marker and embedded sender key must agree.
	if (msg.Version == VersionV2) != (msg.SenderPublicKey != "") {
		return nil, ErrMalformedMessage
	}
	if msg.EphemeralPublicKey != "" && msg.Version != "" {
		return nil, ErrMalformedMessage
	}

	ciphertext, err := crypto.FromBase64(msg.Ciphertext)
	if err != nil {
		return nil, &EncodingError{Field: "ciphertext", Err: err}
	}
	nonce, err := crypto.FromBase64(msg.Nonce)
	if err != nil {
		return nil, &EncodingError{Field: "nonce", Err: err}
	}
	if len(nonce) != crypto.NonceSize {
		return nil, ErrMalformedMessage
	}

	switch {
	case msg.EphemeralPublicKey != "":
		ephemeralKey, err := crypto.FromBase64(msg.EphemeralPublicKey)
		if err != nil {
			return nil, &EncodingError{Field: "ephemeralPublicKey", Err: err}
		}
		return envelopeForwardSecrecy{ciphertext: ciphertext, nonce: nonce, ephemeralKey: ephemeralKey}, nil
	case msg.SenderPublicKey != "":
		senderKey, err := crypto.FromBase64(msg.SenderPublicKey)
		if err != nil {
			return nil, &EncodingError{Field: "senderPublicKey", Err: err}
		}
		return envelopeV2{ciphertext: ciphertext, nonce: nonce, senderKey: senderKey}, nil
	default:
		return envelopeV1{ciphertext: ciphertext, nonce: nonce}, nil
	}
}
