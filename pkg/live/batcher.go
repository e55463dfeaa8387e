package live

import (
	"sync"
	"time"
)

// Batcher groups items added within a time window and hands them to the
// callback in one call. A window of zero delivers every item immediately.
type Batcher[T any] struct {
	window   time.Duration
	callback func([]T)

	mu      sync.Mutex
	pending []T
	timer   *time.Timer

	// serializes callbacks so batches are delivered in order
	flushMu sync.Mutex
}

// NewBatcher creates a new batcher
func NewBatcher[T any](window time.Duration, callback func([]T)) *Batcher[T] {
	return &Batcher[T]{
		window:   window,
		callback: callback,
	}
}

// Add adds an item to the current batch
func (b *Batcher[T]) Add(item T) {
	b.mu.Lock()
	b.pending = append(b.pending, item)

	if b.window <= 0 {
		b.mu.Unlock()
		b.flush()
		return
	}

	// Start timer if not already running
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
	b.mu.Unlock()
}

// flush delivers all pending items
func (b *Batcher[T]) flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	b.timer = nil
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	b.callback(batch)
}

// Flush immediately delivers any pending items
func (b *Batcher[T]) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	b.flush()
}

// Pending returns the number of items waiting for delivery
func (b *Batcher[T]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
