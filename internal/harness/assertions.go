package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/mechanics/internal/cooldown"
	"github.com/roach88/mechanics/internal/engine"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/sim"
	"github.com/roach88/mechanics/internal/store"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []sim.Event
}

func (e *AssertionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s failed\n  expected: %s\n  actual:   %s", e.Type, e.Expected, e.Actual)
	if len(e.Events) > 0 {
		sb.WriteString("\n  events:")
		for i, ev := range e.Events {
			fmt.Fprintf(&sb, "\n    [%d] %s", i, ev)
		}
	}
	return sb.String()
}

// AssertionContext gives assertions access to the state a scenario left
// behind.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Engine *engine.Engine
	Server *sim.Server
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventContains:
			err = assertEventContains(result.Events, a)
		case AssertEventCount:
			err = assertEventCount(result.Events, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Events, a)
		case AssertCooldown:
			err = withEngine(actx, func() error { return assertCooldown(actx.Engine, a) })
		case AssertMonitorCount:
			err = withEngine(actx, func() error { return assertMonitorCount(actx.Engine, a) })
		case AssertJournalCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("journal_count requires a store")
			} else {
				err = assertJournalCount(actx.Ctx, actx.Store, a)
			}
		case AssertActorState:
			if actx == nil || actx.Server == nil {
				err = fmt.Errorf("actor_state requires a server")
			} else {
				err = assertActorState(actx.Server, a)
			}
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}
	return errs
}

func withEngine(actx *AssertionContext, fn func() error) error {
	if actx == nil || actx.Engine == nil {
		return fmt.Errorf("assertion requires an engine")
	}
	return fn()
}

func (m EventMatch) matches(ev sim.Event) bool {
	return (m.Subject == "" || m.Subject == ev.Subject) &&
		(m.Kind == "" || m.Kind == ev.Kind) &&
		(m.Detail == "" || m.Detail == ev.Detail)
}

func (m EventMatch) String() string {
	parts := []string{}
	for _, kv := range [][2]string{{"subject", m.Subject}, {"kind", m.Kind}, {"detail", m.Detail}} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func assertEventContains(events []sim.Event, a Assertion) error {
	for _, ev := range events {
		if a.Event.matches(ev) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: a.Event.String(),
		Actual:   "no matching event",
		Events:   events,
	}
}

func assertEventCount(events []sim.Event, a Assertion) error {
	m := EventMatch{Subject: a.Actor, Kind: a.Kind}
	n := 0
	for _, ev := range events {
		if m.matches(ev) {
			n++
		}
	}
	if n != *a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events matching %s", *a.Count, m),
			Actual:   fmt.Sprintf("%d", n),
			Events:   events,
		}
	}
	return nil
}

// assertEventOrder checks that the events occur in the given order, not
// necessarily adjacent.
func assertEventOrder(events []sim.Event, a Assertion) error {
	next := 0
	for _, ev := range events {
		if next < len(a.Events) && a.Events[next].matches(ev) {
			next++
		}
	}
	if next < len(a.Events) {
		return &AssertionError{
			Type:     AssertEventOrder,
			Expected: fmt.Sprintf("%s in order", a.Events),
			Actual:   fmt.Sprintf("matched up to %s", a.Events[next]),
			Events:   events,
		}
	}
	return nil
}

func assertCooldown(eng *engine.Engine, a Assertion) error {
	trigger, _ := ir.LookupTrigger(a.Trigger)
	active := eng.Cooldowns().IsActive(cooldown.Key(a.Actor, a.Item, trigger))
	if active != *a.Active {
		return &AssertionError{
			Type:     AssertCooldown,
			Expected: fmt.Sprintf("active=%t for %s/%s/%s", *a.Active, a.Actor, a.Item, a.Trigger),
			Actual:   fmt.Sprintf("active=%t", active),
		}
	}
	return nil
}

func assertMonitorCount(eng *engine.Engine, a Assertion) error {
	if n := eng.Stats().MonitorTasks; n != *a.Count {
		return &AssertionError{
			Type:     AssertMonitorCount,
			Expected: fmt.Sprintf("%d monitor tasks", *a.Count),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}

func assertJournalCount(ctx context.Context, st *store.Store, a Assertion) error {
	firings, err := st.ReadFirings(ctx, store.Filter{
		ActorID: a.Actor,
		ItemID:  a.Item,
		Trigger: ir.TriggerKind(a.Trigger),
	})
	if err != nil {
		return err
	}
	if len(firings) != *a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d journaled firings", *a.Count),
			Actual:   fmt.Sprintf("%d", len(firings)),
		}
	}
	return nil
}

func assertActorState(srv *sim.Server, a Assertion) error {
	actor, err := srv.Actor(a.Actor)
	if err != nil {
		return err
	}
	if a.Health != nil && actor.Health() != *a.Health {
		return &AssertionError{
			Type:     AssertActorState,
			Expected: fmt.Sprintf("%s health %g", a.Actor, *a.Health),
			Actual:   fmt.Sprintf("%g", actor.Health()),
		}
	}
	if a.Level != nil && actor.Level() != *a.Level {
		return &AssertionError{
			Type:     AssertActorState,
			Expected: fmt.Sprintf("%s level %d", a.Actor, *a.Level),
			Actual:   fmt.Sprintf("%d", actor.Level()),
		}
	}
	return nil
}
