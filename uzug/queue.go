package uzug

import "sync"

// queue is an unbounded FIFO of command groups. Pushes never block, so a
// render pass can hand off drawer traffic without waiting on the subprocess
// pipe. A consumer waits on Ready and then pops until empty
type queue[T any] struct {
	mu    sync.Mutex
	items []T
	ready chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Ready signals that the queue may be non-empty. The channel coalesces
// wakeups: it holds at most one pending signal
func (q *queue[T]) Ready() <-chan struct{} {
	return q.ready
}

func (q *queue[T]) push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	// A consumer that pops to empty on every wakeup cannot miss an item: if
	// the buffer is full here, a wakeup is already owed for this push
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var item T
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}
