// Package audit records guard rejections off the request path.
package audit

import (
	"context"
	"sync"
)

// Queue is a bounded work queue drained by a fixed set of workers.
// Enqueue never blocks; items are dropped when the buffer is full.
type Queue[T any] struct {
	items   chan T
	handle  func(ctx context.Context, item T)
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewQueue creates a queue with the given buffer size and handler.
func NewQueue[T any](bufferSize int, handle func(ctx context.Context, item T)) *Queue[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue[T]{
		items:  make(chan T, bufferSize),
		handle: handle,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the workers. Calling it again has no effect.
func (q *Queue[T]) Start(workerCount int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.stopped {
		return
	}
	q.started = true

	if workerCount < 1 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()

	for item := range q.items {
		if q.ctx.Err() != nil {
			continue
		}
		q.handle(q.ctx, item)
	}
}

// Enqueue adds an item without blocking. It reports false when the queue is
// full or stopped.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return false
	}
	select {
	case q.items <- item:
		return true
	default:
		return false
	}
}

// Stop closes the queue and lets workers drain what is buffered. When ctx
// ends first, in-flight handlers are cancelled and the rest is discarded.
func (q *Queue[T]) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.items)
	started := q.started
	q.mu.Unlock()

	if !started {
		q.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}
