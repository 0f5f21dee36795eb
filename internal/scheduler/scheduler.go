// Package scheduler provides a tick-driven implementation of host.Scheduler.
//
// Time is measured in ticks. Tick advances the clock by one and runs every
// task that has come due, in due-tick order and then submission order.
// Run drives Tick from a wall-clock ticker; tests call Tick or Advance
// directly for deterministic timing.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/mechanics/internal/host"
)

// DefaultTickDuration is the wall-clock length of one tick at 20 ticks per
// second.
const DefaultTickDuration = time.Second / host.TicksPerSecond

type task struct {
	due       int64
	seq       uint64
	interval  int
	fn        func()
	cancelled atomic.Bool
	index     int
}

func (t *task) Cancel()         { t.cancelled.Store(true) }
func (t *task) Cancelled() bool { return t.cancelled.Load() }

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler is a tick-driven task queue. It is safe for concurrent use;
// callbacks run outside the internal lock and may schedule or cancel tasks.
type Scheduler struct {
	mu    sync.Mutex
	now   int64
	seq   uint64
	tasks taskHeap
}

// New creates a scheduler at tick 0.
func New() *Scheduler {
	return &Scheduler{}
}

var _ host.Scheduler = (*Scheduler)(nil)

// Schedule runs fn once after delayTicks. A delay below one tick runs on
// the next tick.
func (s *Scheduler) Schedule(delayTicks int, fn func()) host.Handle {
	return s.add(delayTicks, 0, fn)
}

// ScheduleRepeating runs fn after delayTicks and then every intervalTicks
// until the handle is cancelled. Intervals below one tick are raised to one.
func (s *Scheduler) ScheduleRepeating(delayTicks, intervalTicks int, fn func()) host.Handle {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return s.add(delayTicks, intervalTicks, fn)
}

func (s *Scheduler) add(delay, interval int, fn func()) host.Handle {
	if delay < 1 {
		delay = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{due: s.now + int64(delay), seq: s.seq, interval: interval, fn: fn}
	heap.Push(&s.tasks, t)
	return t
}

// Now returns the current tick.
func (s *Scheduler) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks that have not been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.Cancelled() {
			n++
		}
	}
	return n
}

// Tick advances one tick and runs every due task. It returns how many
// callbacks ran.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	s.now++
	now := s.now
	s.mu.Unlock()

	ran := 0
	for {
		t := s.popDue(now)
		if t == nil {
			return ran
		}
		if t.Cancelled() {
			continue
		}
		s.run(t, now)
		ran++
		if t.interval > 0 && !t.Cancelled() {
			s.mu.Lock()
			t.due = now + int64(t.interval)
			heap.Push(&s.tasks, t)
			s.mu.Unlock()
		}
	}
}

// Advance runs n ticks and returns the total number of callbacks run.
func (s *Scheduler) Advance(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		ran += s.Tick()
	}
	return ran
}

func (s *Scheduler) popDue(now int64) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 || s.tasks[0].due > now {
		return nil
	}
	return heap.Pop(&s.tasks).(*task)
}

func (s *Scheduler) run(t *task, now int64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panicked",
				"tick", now,
				"repeating", t.interval > 0,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	t.fn()
}

// Run calls Tick every tickDuration until ctx is cancelled. A non-positive
// tickDuration uses DefaultTickDuration.
func (s *Scheduler) Run(ctx context.Context, tickDuration time.Duration) error {
	if tickDuration <= 0 {
		tickDuration = DefaultTickDuration
	}
	slog.Info("scheduler starting", "tick", tickDuration)

	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping", "tick", s.Now(), "pending", s.Pending())
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = s.tasks[:0]
}
