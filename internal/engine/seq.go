package engine

import "sync/atomic"

// SeqClock is a monotonic logical clock. Every invocation that reaches the
// action stage is stamped with the next value, so journal records have a
// total order independent of wall-clock resolution.
//
// Thread-safety: SeqClock is safe for concurrent use.
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClock creates a clock starting at 0.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// NewSeqClockAt creates a clock starting at start. Used to resume after
// the last sequence number found in the journal.
func NewSeqClockAt(start int64) *SeqClock {
	c := &SeqClock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}
