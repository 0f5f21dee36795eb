// Package monitor runs the continuous triggers of equipped items.
//
// Each (actor, item definition) pair owns at most two repeating tasks:
// a while-held task that fires every second for as long as the item stays
// in the actor's main hand, and a periodic task that fires on an interval
// derived from the item's cooldown regardless of where the item is.
package monitor

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

const (
	// HeldIntervalTicks is the while-held cycle: one second.
	HeldIntervalTicks = host.TicksPerSecond

	// MinPeriodicTicks is the shortest periodic cycle: five seconds.
	MinPeriodicTicks = 5 * host.TicksPerSecond

	periodicSuffix = "_periodic"
)

// Firer re-enters the execution pipeline for a monitored item.
type Firer interface {
	Fire(actor host.Actor, item host.Item, trigger ir.TriggerKind) bool
}

// FirerFunc adapts a function to Firer.
type FirerFunc func(actor host.Actor, item host.Item, trigger ir.TriggerKind) bool

// Fire calls f.
func (f FirerFunc) Fire(actor host.Actor, item host.Item, trigger ir.TriggerKind) bool {
	return f(actor, item, trigger)
}

// Key returns the task key of (actor, item definition).
func Key(actorID, defID string) string {
	return actorID + ":" + defID
}

// PeriodicInterval returns the periodic cycle in ticks for an item with
// the given cooldown.
func PeriodicInterval(cooldownSeconds int) int {
	return max(cooldownSeconds*host.TicksPerSecond, MinPeriodicTicks)
}

type task struct {
	handle host.Handle
}

// Monitor owns the per-(actor, item) repeating tasks. It is safe for
// concurrent use.
type Monitor struct {
	sched host.Scheduler
	fire  Firer

	mu    sync.Mutex
	tasks map[string]*task
}

// New creates a monitor that schedules on sched and fires through f.
func New(sched host.Scheduler, f Firer) *Monitor {
	return &Monitor{
		sched: sched,
		fire:  f,
		tasks: make(map[string]*task),
	}
}

// Start begins monitoring item for actor. Tasks already running for the
// pair are left alone, so it is a no-op when def has no continuous trigger
// or when every task it needs is running. It reports whether any task was
// started.
func (m *Monitor) Start(actor host.Actor, item host.Item, def *mechanic.Definition) bool {
	if actor == nil || def == nil {
		return false
	}
	held := def.HasTrigger(ir.TriggerWhileHeld)
	periodic := def.HasTrigger(ir.TriggerPeriodic)
	if !held && !periodic {
		return false
	}

	key := Key(actor.ID(), def.ID())
	m.mu.Lock()
	defer m.mu.Unlock()
	// Each task is started independently: the while-held task ends on its
	// own when the item leaves the hand while the periodic one keeps going.
	held = held && m.tasks[key] == nil
	periodic = periodic && m.tasks[key+periodicSuffix] == nil
	if !held && !periodic {
		return false
	}

	if held {
		t := &task{}
		t.handle = m.sched.ScheduleRepeating(HeldIntervalTicks, HeldIntervalTicks, func() {
			m.heldCycle(key, t, actor, def)
		})
		m.tasks[key] = t
	}
	if periodic {
		interval := PeriodicInterval(def.Item.CooldownSeconds)
		t := &task{}
		t.handle = m.sched.ScheduleRepeating(interval, interval, func() {
			m.periodicCycle(key+periodicSuffix, t, actor, item)
		})
		m.tasks[key+periodicSuffix] = t
	}

	slog.Debug("monitoring started",
		"actor", actor.ID(),
		"item", def.ID(),
		"while_held", held,
		"periodic", periodic,
	)
	return true
}

func (m *Monitor) heldCycle(key string, t *task, actor host.Actor, def *mechanic.Definition) {
	if !actor.Online() {
		m.drop(key, t, "actor offline")
		return
	}
	current := actor.Inventory().MainHand()
	if !host.SameDefinition(current, def.ID()) {
		m.drop(key, t, "item left main hand")
		return
	}
	m.fire.Fire(actor, current, ir.TriggerWhileHeld)
}

func (m *Monitor) periodicCycle(key string, t *task, actor host.Actor, item host.Item) {
	if !actor.Online() {
		m.drop(key, t, "actor offline")
		return
	}
	m.fire.Fire(actor, item, ir.TriggerPeriodic)
}

// drop cancels t and removes it from the registry if it is still the
// task registered under key.
func (m *Monitor) drop(key string, t *task, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.handle.Cancel()
	if m.tasks[key] == t {
		delete(m.tasks, key)
		slog.Debug("monitor task stopped", "key", key, "reason", reason)
	}
}

// Stop cancels both tasks of (actor, item definition) and returns how many
// were running.
func (m *Monitor) Stop(actorID, defID string) int {
	key := Key(actorID, defID)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range []string{key, key + periodicSuffix} {
		if t := m.tasks[k]; t != nil {
			t.handle.Cancel()
			delete(m.tasks, k)
			n++
		}
	}
	return n
}

// StopActor cancels every task of actorID and returns how many were
// running.
func (m *Monitor) StopActor(actorID string) int {
	prefix := actorID + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, t := range m.tasks {
		if strings.HasPrefix(k, prefix) {
			t.handle.Cancel()
			delete(m.tasks, k)
			n++
		}
	}
	return n
}

// Shutdown cancels every task and returns how many were running.
func (m *Monitor) Shutdown() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.tasks)
	for _, t := range m.tasks {
		t.handle.Cancel()
	}
	clear(m.tasks)
	return n
}

// Running reports which tasks of (actor, item definition) are active.
func (m *Monitor) Running(actorID, defID string) (held, periodic bool) {
	key := Key(actorID, defID)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[key] != nil, m.tasks[key+periodicSuffix] != nil
}

// Count returns the number of active tasks.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
