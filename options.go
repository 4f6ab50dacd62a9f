package cipherlink

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cipherlink/client-go/internal/relay"
)

const (
	defaultRelayURL          = "wss://relay.cipherlink.io/chat"
	defaultHeartbeatInterval = 30 * time.Second
)

// sessionConfig holds configuration for a Session.
type sessionConfig struct {
	relayURL          string
	dialer            relay.Dialer
	heartbeatInterval time.Duration
	backoff           relay.Backoff
	logger            zerolog.Logger
}

func defaultSessionConfig() *sessionConfig {
	return &sessionConfig{
		relayURL:          defaultRelayURL,
		dialer:            relay.NewWebSocketDialer(),
		heartbeatInterval: defaultHeartbeatInterval,
		backoff:           relay.DefaultBackoff(),
		logger:            zerolog.Nop(),
	}
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithRelayURL sets the relay endpoint the session connects to.
func WithRelayURL(url string) Option {
	return func(c *sessionConfig) {
		c.relayURL = url
	}
}

// WithDialer sets a custom connection dialer. Mainly for tests.
func WithDialer(d relay.Dialer) Option {
	return func(c *sessionConfig) {
		c.dialer = d
	}
}

// WithHeartbeatInterval sets the fixed ping interval.
// Default: 30 seconds.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(c *sessionConfig) {
		if interval > 0 {
			c.heartbeatInterval = interval
		}
	}
}

// WithReconnectBackoff sets the reconnection schedule: the delay before
// attempt N is baseDelay x multiplier^N, capped at maxDelay, for at most
// maxAttempts attempts. Defaults: 1s base, 30s cap, x2, 10 attempts.
func WithReconnectBackoff(baseDelay, maxDelay time.Duration, multiplier float64, maxAttempts int) Option {
	return func(c *sessionConfig) {
		c.backoff = relay.Backoff{
			MaxAttempts: maxAttempts,
			BaseDelay:   baseDelay,
			MaxDelay:    maxDelay,
			Multiplier:  multiplier,
		}
	}
}

// WithLogger sets the structured logger used for transport diagnostics.
// The default is a no-op logger; crypto material never reaches it.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}
