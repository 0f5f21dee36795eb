package harness

import (
	"github.com/roach88/mechanics/internal/engine"
	"github.com/roach88/mechanics/internal/sim"
)

// Trace entry types.
const (
	TraceFire    = "fire"
	TraceEvent   = "event"
	TraceAdvance = "advance"
	TraceSet     = "set"
	TraceEquip   = "equip"
	TraceUnequip = "unequip"
	TraceCleanup = "cleanup"
)

// Entry is one line of a scenario trace: a flow step or a host event it
// caused. Step is the 1-based flow index.
type Entry struct {
	Type    string
	Step    int
	Actor   string
	Item    string
	Trigger string
	Ticks   int
	Outcome *engine.Outcome
	Event   *sim.Event
}

// canonical returns e as a map for canonical JSON. Zero fields are
// omitted.
func (e Entry) canonical() map[string]any {
	m := map[string]any{"type": e.Type, "step": e.Step}
	if e.Actor != "" {
		m["actor"] = e.Actor
	}
	if e.Item != "" {
		m["item"] = e.Item
	}
	if e.Trigger != "" {
		m["trigger"] = e.Trigger
	}
	if e.Ticks > 0 {
		m["ticks"] = e.Ticks
	}
	if ev := e.Event; ev != nil {
		m["subject"] = ev.Subject
		m["kind"] = ev.Kind
		if ev.Detail != "" {
			m["detail"] = ev.Detail
		}
	}
	if o := e.Outcome; o != nil {
		out := map[string]any{
			"stage":    string(o.Stage),
			"executed": o.Executed,
		}
		if o.Seq > 0 {
			out["seq"] = o.Seq
		}
		if o.Reason != "" {
			out["reason"] = o.Reason
		}
		if len(o.Dispatched) > 0 {
			out["dispatched"] = o.Dispatched
		}
		if o.Scheduled > 0 {
			out["scheduled"] = o.Scheduled
		}
		if o.Skipped > 0 {
			out["skipped"] = o.Skipped
		}
		if o.Failed > 0 {
			out["failed"] = o.Failed
		}
		if o.Remaining > 0 {
			out["remaining"] = o.Remaining
		}
		if o.Consumed {
			out["consumed"] = true
		}
		m["outcome"] = out
	}
	return m
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when the scenario ran and every assertion held.
	Pass bool

	// Trace lists flow steps and the host events they caused, in order.
	Trace []Entry

	// Events is every host event recorded after setup.
	Events []sim.Event

	// Errors holds failed assertions and load problems.
	Errors []string
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []Entry{}, Errors: []string{}}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcomes returns the pipeline outcomes of every fire step, in order.
func (r *Result) Outcomes() []engine.Outcome {
	var out []engine.Outcome
	for _, e := range r.Trace {
		if e.Outcome != nil {
			out = append(out, *e.Outcome)
		}
	}
	return out
}
