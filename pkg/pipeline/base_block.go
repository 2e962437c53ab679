package pipeline

import (
	"context"
	"sync"
)

// BaseBlock carries the lifecycle shared by all blocks: a cancelable context,
// the worker wait group and the terminal fault, if any.
type BaseBlock struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	completed bool
	err       error
}

func NewBaseBlock() *BaseBlock {
	ctx, cancel := context.WithCancel(context.Background())
	return &BaseBlock{ctx: ctx, cancel: cancel}
}

// Fault records the first error and cancels the block's context.
func (b *BaseBlock) Fault(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.mu.Unlock()
	b.cancel()
}

// Err returns the terminal fault, if any.
func (b *BaseBlock) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// IsCompleted reports whether SignalCompletion has run.
func (b *BaseBlock) IsCompleted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed
}

// SignalCompletion marks the block terminal.
func (b *BaseBlock) SignalCompletion() {
	b.mu.Lock()
	b.completed = true
	b.mu.Unlock()
}

// Wait blocks until every worker has returned.
func (b *BaseBlock) Wait() {
	b.wg.Wait()
}

// Stop cancels the block's context, releasing blocked workers.
func (b *BaseBlock) Stop() {
	b.cancel()
}
