package dataflow

import (
	"time"
)

// Option configures retryable operations.
type Option func(*config)

type config struct {
	maxRetries int
	backoff    func(int) time.Duration
}

func defaultConfig() *config {
	return &config{
		maxRetries: 0,
	}
}

// WithRetry enables retry: up to maxRetries additional attempts after the
// first, waiting backoff(attempt) between them.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// ConstantBackoff returns a backoff function that always returns the same duration.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(_ int) time.Duration {
		return d
	}
}

// ExponentialBackoff returns a backoff function that increases the duration exponentially.
// backoff = initial * 2^(attempt-1)
func ExponentialBackoff(initial time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt <= 1 {
			return initial
		}
		return initial * time.Duration(1<<(attempt-1))
	}
}
