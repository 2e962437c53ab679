package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// ActionFunc is the work an ActionBlock performs per message.
type ActionFunc func(interface{}) error

// ActionBlock executes an action for each posted message and forwards the
// message to its linked targets. Failed actions are retried per the block's
// retry policy before the block faults.
type ActionBlock struct {
	*BaseBlock
	input      chan interface{}
	action     ActionFunc
	targets    []*Target
	targetsMux sync.RWMutex
	stopOnce   sync.Once
	options    BlockOptions
}

// NewActionBlock creates an ActionBlock. Default: no retry, one worker.
func NewActionBlock(action ActionFunc, opts ...Option) *ActionBlock {
	options := applyOptions(opts)

	b := &ActionBlock{
		BaseBlock: NewBaseBlock(),
		input:     make(chan interface{}, options.BufferSize),
		action:    action,
		options:   options,
	}

	b.wg.Add(options.ConcurrencyDegree)
	for i := 0; i < options.ConcurrencyDegree; i++ {
		go b.process()
	}

	// Completion is per block, not per worker: the block stays open for Post
	// until the last worker has exited.
	go func() {
		b.wg.Wait()
		b.SignalCompletion()
	}()

	return b
}

// Post offers a message to the block without blocking. It reports false when
// the block is completed or its input buffer is full.
func (b *ActionBlock) Post(message interface{}) bool {
	if b.IsCompleted() {
		return false
	}

	select {
	case b.input <- message:
		return true
	default:
		return false
	}
}

// LinkTo links this block to a target with an optional filter function.
func (b *ActionBlock) LinkTo(target *Target, filter func(interface{}) bool) {
	b.targetsMux.Lock()
	defer b.targetsMux.Unlock()

	b.targets = append(b.targets, target)
	if filter != nil {
		target.SetFilter(filter)
	}
}

func (b *ActionBlock) process() {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.Fault(fmt.Errorf("panic in ActionBlock: %v", r))
		}
	}()

	for {
		select {
		case <-b.ctx.Done():
			return

		case msg, ok := <-b.input:
			if !ok {
				return
			}

			if err := b.executeAction(msg); err != nil {
				b.Fault(err)
				continue
			}

			b.targetsMux.RLock()
			targets := make([]*Target, len(b.targets))
			copy(targets, b.targets)
			b.targetsMux.RUnlock()

			for _, target := range targets {
				if target.filter == nil || target.filter(msg) {
					select {
					case target.ch <- msg:
					case <-b.ctx.Done():
						return
					}
				}
			}
		}
	}
}

func (b *ActionBlock) executeAction(msg interface{}) error {
	if b.options.RetryPolicy == nil || b.options.RetryPolicy.MaxRetries <= 1 {
		return b.action(msg)
	}

	var lastErr error
	maxAttempts := b.options.RetryPolicy.MaxRetries

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if lastErr = b.action(msg); lastErr == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}

		if b.options.RetryPolicy.Backoff > 0 {
			backoff := time.Duration(attempt+1) * b.options.RetryPolicy.Backoff
			select {
			case <-time.After(backoff):
			case <-b.ctx.Done():
				return b.ctx.Err()
			}
		}
	}

	return lastErr
}

// Complete closes the input channel, letting workers drain and finish.
func (b *ActionBlock) Complete() {
	b.stopOnce.Do(func() {
		close(b.input)
	})
}
