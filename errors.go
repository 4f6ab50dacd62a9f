package cipherlink

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrRandomSource is returned when the CSPRNG cannot supply bytes.
	// Key and nonce generation halt on it; there is no degraded mode.
	ErrRandomSource = errors.New("random source failure")

	// ErrDecryptionFailed is returned when a ciphertext cannot be
	// authenticated and decrypted with any candidate key. The caller must
	// treat the message as undisplayable, never as empty content.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedMessage is returned for wire shapes that violate the
	// protocol: bad base64, missing fields, or mixed version markers.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrMissingEphemeralKey is returned when a forward-secrecy decrypt is
	// attempted on a message that carries no ephemeral public key.
	ErrMissingEphemeralKey = errors.New("missing ephemeral public key")

	// ErrInvalidKey is returned when key material has the wrong size or shape.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrSessionClosed is returned when operating on a disconnected session
	// after an explicit Disconnect.
	ErrSessionClosed = errors.New("session has been closed")

	// ErrAlreadyConnected is returned by Connect on a session that is
	// already connected or connecting.
	ErrAlreadyConnected = errors.New("session already connected")

	// ErrMissingToken is returned by Connect when no auth token is given.
	ErrMissingToken = errors.New("auth token is required")

	// ErrMissingIdentity is returned by Connect when no identity is given.
	ErrMissingIdentity = errors.New("identity is required")

	// ErrConnectivityExhausted is the terminal transport error emitted
	// exactly once after the reconnection budget is spent.
	ErrConnectivityExhausted = errors.New("reconnection attempts exhausted")
)

// ConnectivityError reports the terminal failure of the reconnect loop.
type ConnectivityError struct {
	// Attempts is the number of reconnection attempts made.
	Attempts int
	// Err is the error from the final dial attempt.
	Err error
}

func (e *ConnectivityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection lost after %d reconnection attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("connection lost after %d reconnection attempts", e.Attempts)
}

// Unwrap returns the underlying error.
func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivityExhausted
}

// EncodingError wraps a base64 or JSON failure on a named wire field.
// It deliberately carries no payload bytes.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *EncodingError) Is(target error) bool {
	return target == ErrMalformedMessage
}
