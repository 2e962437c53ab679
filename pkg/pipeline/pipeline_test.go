package pipeline

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		o := applyOptions(nil)
		assert.Nil(t, o.RetryPolicy)
		assert.Equal(t, 1, o.ConcurrencyDegree)
		assert.Equal(t, 0, o.BufferSize)
	})

	t.Run("InvalidValuesIgnored", func(t *testing.T) {
		o := applyOptions([]Option{WithConcurrencyDegree(0), WithBufferSize(-1)})
		assert.Equal(t, 1, o.ConcurrencyDegree)
		assert.Equal(t, 0, o.BufferSize)
	})

	t.Run("RetryPolicy", func(t *testing.T) {
		o := applyOptions([]Option{WithRetryPolicy(RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond})})
		assert.NotNil(t, o.RetryPolicy)
		assert.Equal(t, 3, o.RetryPolicy.MaxRetries)
	})
}

func TestActionBlockProcessesMessages(t *testing.T) {
	var count int32
	block := NewActionBlock(func(msg interface{}) error {
		atomic.AddInt32(&count, 1)
		return nil
	}, WithBufferSize(8))

	for i := 0; i < 5; i++ {
		assert.True(t, block.Post(i))
	}
	block.Complete()
	block.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
	assert.NoError(t, block.Err())
}

func TestActionBlockRetriesThenFaults(t *testing.T) {
	var attempts int32
	block := NewActionBlock(func(msg interface{}) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, WithBufferSize(1), WithRetryPolicy(RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}))

	assert.True(t, block.Post("x"))
	block.Complete()
	block.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Error(t, block.Err())
}

func TestBufferBlockFansOutWithFilter(t *testing.T) {
	block := NewBufferBlock(WithBufferSize(8))

	evens := make(chan interface{}, 8)
	all := make(chan interface{}, 8)
	block.LinkTo(NewTarget(evens), func(msg interface{}) bool { return msg.(int)%2 == 0 })
	block.LinkTo(NewTarget(all), nil)

	for i := 0; i < 4; i++ {
		assert.True(t, block.Post(i))
	}
	block.Complete()
	block.Wait()

	assert.Len(t, drain(evens), 2)
	assert.Len(t, drain(all), 4)
}

func TestActionBlockConcurrentWorkers(t *testing.T) {
	var count int32
	block := NewActionBlock(func(msg interface{}) error {
		atomic.AddInt32(&count, 1)
		return nil
	}, WithConcurrencyDegree(2), WithBufferSize(16))

	for i := 0; i < 10; i++ {
		assert.True(t, block.Post(i))
	}
	block.Complete()
	block.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
	assert.NoError(t, block.Err())
	assert.Eventually(t, block.IsCompleted, time.Second, time.Millisecond)
}

func TestBufferBlockConcurrentWorkersCloseTargetsOnce(t *testing.T) {
	block := NewBufferBlock(WithConcurrencyDegree(2), WithBufferSize(16))

	out := make(chan interface{}, 16)
	block.LinkTo(NewTarget(out), nil)

	for i := 0; i < 8; i++ {
		assert.True(t, block.Post(i))
	}
	block.Complete()
	block.Wait()

	// Target channels close once, after both workers have exited; a
	// per-worker close would panic here.
	assert.Len(t, drain(out), 8)
	assert.NoError(t, block.Err())
	assert.Eventually(t, block.IsCompleted, time.Second, time.Millisecond)
}

func TestPostAfterCompleteIsRejected(t *testing.T) {
	block := NewBufferBlock(WithBufferSize(1))
	block.Complete()
	block.Wait()
	assert.False(t, block.Post("late"))
}

func drain(ch chan interface{}) []interface{} {
	var out []interface{}
	for msg := range ch {
		out = append(out, msg)
	}
	return out
}
