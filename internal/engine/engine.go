package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/roach88/mechanics/internal/condition"
	"github.com/roach88/mechanics/internal/cooldown"
	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/messages"
	"github.com/roach88/mechanics/internal/monitor"
)

// Journal receives a record of every invocation that reaches the action
// stage. Record must not block; it returns false when the record was
// dropped.
type Journal interface {
	Record(f ir.Firing) bool
}

// Engine runs item mechanics. Construct one with New and share it; every
// method is safe for concurrent use.
type Engine struct {
	provider   mechanic.Provider
	sched      host.Scheduler
	clock      host.Clock
	seq        *SeqClock
	ids        IDGenerator
	cooldowns  *cooldown.Registry
	conditions *condition.Evaluator
	monitor    *monitor.Monitor
	messages   *messages.Catalog
	journal    Journal

	invocations atomic.Int64
	executed    atomic.Int64
	failures    atomic.Int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the wall clock used for cooldowns and condition caching
// when New builds those registries. Default: host.SystemClock.
func WithClock(c host.Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithSeqClock sets the logical clock, e.g. one resumed from the journal.
func WithSeqClock(c *SeqClock) EngineOption {
	return func(e *Engine) { e.seq = c }
}

// WithIDGenerator sets the invocation ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) { e.ids = g }
}

// WithCooldowns supplies a pre-built cooldown registry.
func WithCooldowns(r *cooldown.Registry) EngineOption {
	return func(e *Engine) { e.cooldowns = r }
}

// WithEvaluator supplies a pre-built condition evaluator.
func WithEvaluator(ev *condition.Evaluator) EngineOption {
	return func(e *Engine) { e.conditions = ev }
}

// WithMessages sets the notice catalog. Default: messages.Default().
func WithMessages(c *messages.Catalog) EngineOption {
	return func(e *Engine) { e.messages = c }
}

// WithJournal sets the firing journal. Default: none.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// New creates an Engine reading definitions from provider and deferring
// work onto sched.
//
// The engine registers the not_on_cooldown condition on its evaluator.
func New(provider mechanic.Provider, sched host.Scheduler, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		sched:    sched,
		clock:    host.SystemClock{},
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seq == nil {
		e.seq = NewSeqClock()
	}
	if e.cooldowns == nil {
		e.cooldowns = cooldown.New(cooldown.WithClock(e.clock))
	}
	if e.conditions == nil {
		e.conditions = condition.New(condition.WithClock(e.clock))
	}
	if e.messages == nil {
		e.messages = messages.Default()
	}
	e.monitor = monitor.New(sched, monitor.FirerFunc(e.fire))

	if err := e.conditions.Register(condition.TypeNotOnCooldown, e.notOnCooldown, condition.Uncached()); err != nil {
		slog.Warn("not_on_cooldown condition unavailable", "error", err)
	}
	return e
}

// notOnCooldown is true when the context's (actor, item, trigger) has no
// active cooldown.
func (e *Engine) notOnCooldown(ctx *mechanic.Context, _ ir.Condition) bool {
	return !e.cooldowns.IsActive(cooldown.Key(ctx.ActorID(), ctx.DefinitionID(), ctx.Trigger()))
}

// Cooldowns returns the engine's cooldown registry.
func (e *Engine) Cooldowns() *cooldown.Registry { return e.cooldowns }

// Conditions returns the engine's condition evaluator, e.g. to register
// deployment-specific predicates.
func (e *Engine) Conditions() *condition.Evaluator { return e.conditions }

// Seq returns the engine's logical clock.
func (e *Engine) Seq() *SeqClock { return e.seq }

// StartMonitoring starts the continuous-trigger tasks of item for actor.
// It reports whether any task was started.
func (e *Engine) StartMonitoring(actor host.Actor, item host.Item) bool {
	if actor == nil || host.IsEmpty(item) {
		return false
	}
	def, ok := e.provider.Lookup(item.DefinitionID())
	if !ok {
		return false
	}
	return e.monitor.Start(actor, item, def)
}

// StopMonitoring cancels both continuous-trigger tasks of (actor, item
// definition) and returns how many were running.
func (e *Engine) StopMonitoring(actorID, defID string) int {
	return e.monitor.Stop(actorID, defID)
}

// CleanupActor drops everything held for actorID: monitor tasks, cooldowns
// and cached condition results. Hosts call it on disconnect.
func (e *Engine) CleanupActor(actorID string) {
	tasks := e.monitor.StopActor(actorID)
	cds := e.cooldowns.ClearActor(actorID)
	cached := e.conditions.ForgetActor(actorID)
	slog.Debug("actor cleaned up",
		"actor", actorID,
		"tasks", tasks,
		"cooldowns", cds,
		"cached_conditions", cached,
	)
}

// Shutdown cancels every monitor task and clears the condition cache.
// Cooldowns are kept so they can be snapshotted afterwards.
func (e *Engine) Shutdown() {
	tasks := e.monitor.Shutdown()
	e.conditions.ClearCache()
	slog.Info("engine shut down", "tasks_cancelled", tasks, "cooldowns", e.cooldowns.Len())
}

// Stats is the read-only diagnostics surface.
type Stats struct {
	ActiveCooldowns  int   `json:"active_cooldowns"`
	CachedConditions int   `json:"cached_conditions"`
	CustomConditions int   `json:"custom_conditions"`
	MonitorTasks     int   `json:"monitor_tasks"`
	Invocations      int64 `json:"invocations"`
	Executed         int64 `json:"executed"`
	Failures         int64 `json:"failures"`
	Healthy          bool  `json:"healthy"`
}

// Stats returns current counters.
func (e *Engine) Stats() Stats {
	cd := e.cooldowns.Stats()
	cond := e.conditions.Stats()
	return Stats{
		ActiveCooldowns:  cd.Active,
		CachedConditions: cond.Cached,
		CustomConditions: cond.Custom,
		MonitorTasks:     e.monitor.Count(),
		Invocations:      e.invocations.Load(),
		Executed:         e.executed.Load(),
		Failures:         e.failures.Load(),
		Healthy:          cd.Healthy,
	}
}
