package pipeline

import (
	"fmt"
	"sync"
)

// BufferBlock decouples a producer from its consumers: messages posted to it
// are forwarded to every linked target that accepts them.
type BufferBlock struct {
	*BaseBlock
	input      chan interface{}
	targets    []*Target
	targetsMux sync.RWMutex
	stopOnce   sync.Once
}

// NewBufferBlock creates a BufferBlock. Default: unbuffered, one worker.
func NewBufferBlock(opts ...Option) *BufferBlock {
	options := applyOptions(opts)

	b := &BufferBlock{
		BaseBlock: NewBaseBlock(),
		input:     make(chan interface{}, options.BufferSize),
	}

	b.wg.Add(options.ConcurrencyDegree)
	for i := 0; i < options.ConcurrencyDegree; i++ {
		go b.process()
	}

	// Targets close exactly once, after the last worker has exited, so a
	// faster sibling worker cannot close them out from under a slower one.
	go func() {
		b.wg.Wait()
		b.targetsMux.RLock()
		for _, t := range b.targets {
			close(t.ch)
		}
		b.targetsMux.RUnlock()
		b.SignalCompletion()
	}()

	return b
}

// Post offers a message without blocking; false when completed or full.
func (b *BufferBlock) Post(message interface{}) bool {
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
func (b *BufferBlock) LinkTo(target *Target, filter func(interface{}) bool) {
	b.targetsMux.Lock()
	defer b.targetsMux.Unlock()

	b.targets = append(b.targets, target)
	if filter != nil {
		target.SetFilter(filter)
	}
}

func (b *BufferBlock) process() {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.Fault(fmt.Errorf("panic in BufferBlock: %v", r))
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

// Complete closes the input channel, letting the workers drain and finish.
func (b *BufferBlock) Complete() {
	b.stopOnce.Do(func() {
		close(b.input)
	})
}
