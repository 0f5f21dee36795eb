package journal

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/mechanics/internal/ir"
)

// DefaultBatchSize bounds the number of firings written per transaction.
const DefaultBatchSize = 256

// Writer persists a batch of firings.
type Writer interface {
	WriteFirings(ctx context.Context, firings []ir.Firing) error
}

// Journal buffers firings and writes them from a single goroutine.
// It implements engine.Journal.
type Journal struct {
	q         *queue
	w         Writer
	batchSize int

	written atomic.Int64
	dropped atomic.Int64
}

// Option configures a Journal.
type Option func(*Journal)

// WithBatchSize sets the maximum batch size. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.batchSize = n
		}
	}
}

// New creates a journal writing to w.
func New(w Writer, opts ...Option) *Journal {
	j := &Journal{
		q:         newQueue(),
		w:         w,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record queues f for writing. Returns false once the journal is closed.
func (j *Journal) Record(f ir.Firing) bool {
	return j.q.Enqueue(f)
}

// Run drains the queue until Close has been called and the queue is empty,
// or ctx is cancelled. On cancellation whatever is still queued is flushed
// before returning ctx.Err().
func (j *Journal) Run(ctx context.Context) error {
	for {
		// Observe closed before taking so nothing enqueued earlier is missed.
		closed := j.q.Closed()
		if batch := j.q.TakeBatch(j.batchSize); len(batch) > 0 {
			j.write(ctx, batch)
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			j.Flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-j.q.Wait():
		}
	}
}

// Flush writes everything currently queued on the calling goroutine.
// It must not race with Run.
func (j *Journal) Flush(ctx context.Context) {
	for {
		batch := j.q.TakeBatch(j.batchSize)
		if len(batch) == 0 {
			return
		}
		j.write(ctx, batch)
	}
}

func (j *Journal) write(ctx context.Context, batch []ir.Firing) {
	if err := j.w.WriteFirings(ctx, batch); err != nil {
		j.dropped.Add(int64(len(batch)))
		slog.Error("journal write failed",
			"firings", len(batch),
			"first_seq", batch[0].Seq,
			"error", err,
		)
		return
	}
	j.written.Add(int64(len(batch)))
}

// Close stops accepting records. Run returns once the backlog is written.
func (j *Journal) Close() { j.q.Close() }

// Len returns the number of queued, unwritten firings.
func (j *Journal) Len() int { return j.q.Len() }

// Written returns the number of firings successfully written.
func (j *Journal) Written() int64 { return j.written.Load() }

// Dropped returns the number of firings lost to write errors.
func (j *Journal) Dropped() int64 { return j.dropped.Load() }
