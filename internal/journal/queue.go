package journal

import (
	"sync"

	"github.com/roach88/mechanics/internal/ir"
)

// queue is a thread-safe FIFO of firings.
//
// Enqueue never blocks. The buffered signal channel coalesces wakeups and
// is closed on Close so a waiting Run loop observes shutdown.
type queue struct {
	mu      sync.Mutex
	firings []ir.Firing
	closed  bool
	signal  chan struct{}
}

func newQueue() *queue {
	return &queue{
		firings: make([]ir.Firing, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends f. Returns false if the queue is closed.
func (q *queue) Enqueue(f ir.Firing) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.firings = append(q.firings, f)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TakeBatch removes up to limit firings from the front. limit <= 0 takes all.
func (q *queue) TakeBatch(limit int) []ir.Firing {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.firings)
	if n == 0 {
		return nil
	}
	if limit > 0 && n > limit {
		n = limit
	}
	batch := make([]ir.Firing, n)
	copy(batch, q.firings[:n])

	// Zero the taken slots so their Actions slices can be collected.
	clear(q.firings[:n])
	if n == len(q.firings) {
		q.firings = q.firings[:0]
	} else {
		q.firings = q.firings[n:]
	}
	return batch
}

// Wait returns a channel that fires when firings may be available.
func (q *queue) Wait() <-chan struct{} {
	return q.signal
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.firings)
}

func (q *queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes waiters.
func (q *queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
