package client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default wait between a lost connection and the next attempt
const DefaultReconnectInterval = 5 * time.Second

// ReconnectPolicy decides how long the manager waits before the next attempt.
// Reset is called after every successful connection.
type ReconnectPolicy interface {
	NextDelay() time.Duration
	Reset()
}

// FixedDelay waits the same time before every attempt, forever
type FixedDelay time.Duration

func (delay FixedDelay) NextDelay() time.Duration {
	return time.Duration(delay)
}

func (delay FixedDelay) Reset() {}

// ExponentialBackoff doubles the wait after each failed attempt, with a little
// jitter, and never waits longer than the cap.
type ExponentialBackoff struct {
	b        *backoff.ExponentialBackOff
	maxDelay time.Duration
}

func NewExponentialBackoff(initial, maxDelay time.Duration) *ExponentialBackoff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0
	b.Reset()

	return &ExponentialBackoff{b: b, maxDelay: maxDelay}
}

func (policy *ExponentialBackoff) NextDelay() time.Duration {
	delay := policy.b.NextBackOff()
	if delay == backoff.Stop || delay > policy.maxDelay {
		return policy.maxDelay
	}
	return delay
}

func (policy *ExponentialBackoff) Reset() {
	policy.b.Reset()
}

// Build the policy named in config, anything but "exponential" is fixed
func NewReconnectPolicy(name string, interval, maxDelay time.Duration) ReconnectPolicy {
	if interval <= 0 {
		interval = DefaultReconnectInterval
	}
	if name == "exponential" {
		if maxDelay < interval {
			maxDelay = interval
		}
		return NewExponentialBackoff(interval, maxDelay)
	}
	return FixedDelay(interval)
}
