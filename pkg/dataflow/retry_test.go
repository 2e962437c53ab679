package dataflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessAfterRetries", func(t *testing.T) {
		var attempts int32
		fn := func() error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("fail")
			}
			return nil
		}

		err := Do(ctx, fn, WithRetry(3, ConstantBackoff(time.Millisecond)))
		assert.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("FailAfterMaxRetries", func(t *testing.T) {
		var attempts int32
		fn := func() error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("permanent fail")
		}

		err := Do(ctx, fn, WithRetry(3, ConstantBackoff(time.Millisecond)))
		assert.Error(t, err)
		// Initial attempt plus three retries.
		assert.Equal(t, int32(4), atomic.LoadInt32(&attempts))
	})

	t.Run("NoRetryByDefault", func(t *testing.T) {
		var attempts int32
		err := Do(ctx, func() error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("CanceledContextStopsRetries", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		var attempts int32
		err := Do(cctx, func() error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("fail")
		}, WithRetry(5, ConstantBackoff(time.Millisecond)))

		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("ExponentialBackoff", func(t *testing.T) {
		backoff := ExponentialBackoff(10 * time.Millisecond)
		assert.Equal(t, 10*time.Millisecond, backoff(0))
		assert.Equal(t, 10*time.Millisecond, backoff(1))
		assert.Equal(t, 20*time.Millisecond, backoff(2))
		assert.Equal(t, 40*time.Millisecond, backoff(3))
		assert.Equal(t, 80*time.Millisecond, backoff(4))
	})
}
