// Package relay provides the low-level connection machinery for the
// CipherLink session transport: a WebSocket dialer abstraction that can
// be swapped out in tests, and the capped exponential backoff schedule
// used between reconnection attempts.
//
// The relay never sees plaintext. Everything crossing a Conn is either
// protocol framing or ciphertext produced upstream.
package relay
