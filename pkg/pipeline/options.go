package pipeline

import (
	"time"
)

// BlockOptions configures the behavior of pipeline blocks.
type BlockOptions struct {
	// RetryPolicy defines the retry behavior for actions that can fail.
	RetryPolicy *RetryPolicy

	// ConcurrencyDegree is the number of workers consuming the input
	// channel. Default is 1 (sequential processing).
	ConcurrencyDegree int

	// BufferSize is the capacity of the input channel.
	BufferSize int
}

// RetryPolicy defines the retry policy for block actions.
type RetryPolicy struct {
	// MaxRetries is the maximum number of attempts including the first.
	MaxRetries int

	// Backoff is the base wait between attempts; the wait for attempt n is
	// Backoff * (n + 1).
	Backoff time.Duration
}

// Option is a function that configures BlockOptions.
type Option func(*BlockOptions)

// DefaultBlockOptions returns the default block options.
func DefaultBlockOptions() BlockOptions {
	return BlockOptions{
		RetryPolicy:       nil,
		ConcurrencyDegree: 1,
		BufferSize:        0,
	}
}

// WithRetryPolicy configures a retry policy for the block.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *BlockOptions) {
		o.RetryPolicy = &policy
	}
}

// WithConcurrencyDegree sets the number of concurrent workers.
func WithConcurrencyDegree(degree int) Option {
	return func(o *BlockOptions) {
		if degree > 0 {
			o.ConcurrencyDegree = degree
		}
	}
}

// WithBufferSize sets the buffer size for the input channel.
func WithBufferSize(size int) Option {
	return func(o *BlockOptions) {
		if size > 0 {
			o.BufferSize = size
		}
	}
}

func applyOptions(opts []Option) BlockOptions {
	options := DefaultBlockOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Target receives messages forwarded from a source block, optionally gated
// by a filter.
type Target struct {
	ch     chan<- interface{}
	filter func(interface{}) bool
}

// NewTarget creates a target around the given channel.
func NewTarget(ch chan<- interface{}) *Target {
	return &Target{ch: ch}
}

// SetFilter sets the filter function for the target.
func (t *Target) SetFilter(filter func(interface{}) bool) {
	t.filter = filter
}
