package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/mechanics/internal/engine"
	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/journal"
	"github.com/roach88/mechanics/internal/loader"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/scheduler"
	"github.com/roach88/mechanics/internal/sim"
	"github.com/roach88/mechanics/internal/store"
	"github.com/roach88/mechanics/internal/testutil"
)

// tick is the wall time one scheduler tick represents.
const tick = time.Second / host.TicksPerSecond

// Harness runs one scenario against a fresh simulated host, engine and
// in-memory journal. Clock, IDs and tick time are deterministic.
type Harness struct {
	scenario *Scenario
	server   *sim.Server
	registry *mechanic.Registry
	engine   *engine.Engine
	sched    *scheduler.Scheduler
	clock    *testutil.FakeClock
	store    *store.Store
	journal  *journal.Journal
	result   *Result
}

// Run executes a scenario and evaluates its assertions. The returned error
// covers setup failures only; failed assertions are reported in the
// result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.close()

	if err := h.setup(); err != nil {
		return nil, err
	}
	for i, step := range scenario.Flow {
		if err := h.step(i+1, step); err != nil {
			return nil, fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	ctx := context.Background()
	if err := h.drainJournal(ctx); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Ctx:    ctx,
		Store:  h.store,
		Engine: h.engine,
		Server: h.server,
	}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	clock := testutil.NewFakeClock()
	sched := scheduler.New()
	registry := mechanic.NewRegistry()
	j := journal.New(st)
	eng := engine.New(registry, sched,
		engine.WithClock(clock),
		engine.WithIDGenerator(engine.NewSequenceGenerator("")),
		engine.WithJournal(j),
	)

	return &Harness{
		scenario: scenario,
		server:   sim.NewServer(),
		registry: registry,
		engine:   eng,
		sched:    sched,
		clock:    clock,
		store:    st,
		journal:  j,
		result:   NewResult(),
	}, nil
}

func (h *Harness) close() {
	h.engine.Shutdown()
	h.sched.CancelAll()
	h.journal.Close()
	h.store.Close()
}

// setup loads items and builds the starting world. Events recorded while
// setting up are discarded.
func (h *Harness) setup() error {
	l := loader.New(nil, loader.WithConditionTypes(h.engine.Conditions().Known))
	for _, path := range h.scenario.ItemPaths() {
		res, err := l.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		for _, le := range res.Errors {
			h.result.AddError("items: " + le.Error())
		}
		res.Register(h.registry)
	}

	for _, m := range h.scenario.Mobs {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		health := m.Health
		if health <= 0 {
			health = 20
		}
		h.server.AddMob(m.ID, name, health)
	}

	for _, spec := range h.scenario.Actors {
		name, world := spec.Name, spec.World
		if name == "" {
			name = spec.ID
		}
		if world == "" {
			world = "world"
		}
		a := h.server.AddActor(spec.ID, name, world)
		if spec.Health != nil {
			a.SetHealth(*spec.Health)
		}
		if spec.Level != nil {
			a.SetLevel(*spec.Level)
		}
		for _, p := range spec.Permissions {
			a.Grant(p)
		}
		for _, s := range spec.States {
			if err := a.SetState(s, true); err != nil {
				return fmt.Errorf("actor %s: %w", spec.ID, err)
			}
		}
		if spec.MainHand != nil {
			a.Hands().SetMainHand(h.stack(*spec.MainHand))
		}
		if spec.OffHand != nil {
			a.Hands().SetOffHand(h.stack(*spec.OffHand))
		}
	}

	h.server.Recorder().Drain()
	return nil
}

// stack builds an item stack. Missing material comes from the item's
// definition.
func (h *Harness) stack(s StackSpec) *sim.Item {
	amount, material := s.Amount, s.Material
	if amount == 0 {
		amount = 1
	}
	if material == "" {
		material = loader.DefaultMaterial
		if def, ok := h.registry.Lookup(s.Item); ok {
			material = def.Item.Material
		}
	}
	return sim.NewItem(s.Item, material, amount)
}

func (h *Harness) step(n int, s FlowStep) error {
	var err error
	switch s.Kind() {
	case "fire":
		err = h.fire(n, *s.Fire)
	case "advance":
		for range s.Advance {
			h.clock.Advance(tick)
			h.sched.Tick()
		}
		h.trace(Entry{Type: TraceAdvance, Step: n, Ticks: s.Advance})
	case "set":
		err = h.set(n, *s.Set)
	case "equip":
		err = h.equip(n, *s.Equip)
	case "unequip":
		var a *sim.Actor
		if a, err = h.server.Actor(s.Unequip); err == nil {
			a.Hands().SetMainHand(nil)
			h.trace(Entry{Type: TraceUnequip, Step: n, Actor: s.Unequip})
		}
	case "cleanup":
		h.engine.CleanupActor(s.Cleanup)
		h.trace(Entry{Type: TraceCleanup, Step: n, Actor: s.Cleanup})
	default:
		err = fmt.Errorf("step has no single action")
	}
	if err != nil {
		return err
	}
	h.collect(n)
	return nil
}

func (h *Harness) fire(n int, f FireStep) error {
	a, err := h.server.Actor(f.Actor)
	if err != nil {
		return err
	}
	trigger, ok := ir.LookupTrigger(f.Trigger)
	if !ok {
		return fmt.Errorf("unknown trigger %q", f.Trigger)
	}

	var item host.Item
	if f.Hand == "off" {
		item = a.Hands().OffHand()
	} else {
		item = a.Hands().MainHand()
	}

	var mctx *mechanic.Context
	if f.Target != "" {
		target, err := h.entity(f.Target)
		if err != nil {
			return err
		}
		mctx = mechanic.NewContext(a, item, trigger, mechanic.WithTarget(target))
	}

	out := h.engine.DetectAndExecuteWithOutcome(a, item, trigger, mctx)
	h.trace(Entry{
		Type:    TraceFire,
		Step:    n,
		Actor:   f.Actor,
		Item:    out.ItemID,
		Trigger: string(trigger),
		Outcome: &out,
	})
	return nil
}

func (h *Harness) entity(id string) (host.Entity, error) {
	if m, err := h.server.Mob(id); err == nil {
		return m, nil
	}
	return h.server.Actor(id)
}

func (h *Harness) set(n int, p ActorPatch) error {
	a, err := h.server.Actor(p.Actor)
	if err != nil {
		return err
	}
	if p.Health != nil {
		a.SetHealth(*p.Health)
	}
	if p.Level != nil {
		a.SetLevel(*p.Level)
	}
	if p.Online != nil {
		a.SetOnline(*p.Online)
	}
	for state, v := range p.States {
		if err := a.SetState(state, v); err != nil {
			return err
		}
	}
	for _, perm := range p.Grant {
		a.Grant(perm)
	}
	for _, perm := range p.Revoke {
		a.Revoke(perm)
	}
	h.trace(Entry{Type: TraceSet, Step: n, Actor: p.Actor})
	return nil
}

func (h *Harness) equip(n int, e EquipStep) error {
	a, err := h.server.Actor(e.Actor)
	if err != nil {
		return err
	}
	it := h.stack(e.StackSpec)
	a.Hands().SetMainHand(it)
	h.engine.StartMonitoring(a, it)
	h.trace(Entry{Type: TraceEquip, Step: n, Actor: e.Actor, Item: e.Item})
	return nil
}

func (h *Harness) trace(e Entry) {
	h.result.Trace = append(h.result.Trace, e)
}

// collect moves the host events recorded during step n into the trace.
func (h *Harness) collect(n int) {
	for _, ev := range h.server.Recorder().Drain() {
		h.result.Events = append(h.result.Events, ev)
		h.trace(Entry{Type: TraceEvent, Step: n, Event: &ev})
	}
}

// drainJournal closes the journal and writes everything it buffered.
func (h *Harness) drainJournal(ctx context.Context) error {
	h.journal.Close()
	if err := h.journal.Run(ctx); err != nil {
		return fmt.Errorf("drain journal: %w", err)
	}
	return nil
}
