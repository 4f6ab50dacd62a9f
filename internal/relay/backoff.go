package relay

import (
	"math"
	"time"
)

// Backoff configures the reconnection schedule after an unexpected
// connection loss.
type Backoff struct {
	// MaxAttempts is the reconnection budget. Once spent, the transport
	// stops retrying and reports a terminal connectivity failure.
	MaxAttempts int
	// BaseDelay is the delay before the first reconnection attempt.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay grows per attempt.
	Multiplier float64
}

// DefaultBackoff returns the default reconnection schedule:
// 1s, 2s, 4s, ... capped at 30s, for at most 10 attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// Exhausted reports whether the attempt counter has spent the budget.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxAttempts
}

// Delay returns the wait before the given zero-based attempt. Delays are
// monotonically non-decreasing and capped at MaxDelay.
func (b Backoff) Delay(attempt int) time.Duration {
	delay := float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(attempt))
	if delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	return time.Duration(delay)
}
