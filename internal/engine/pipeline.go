package engine

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/mechanics/internal/cooldown"
	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/messages"
)

const (
	reasonNoActor        = "actor missing or offline"
	reasonEmptyItem      = "item is empty"
	reasonUnknownTrigger = "unknown trigger"
	reasonNotInHand      = "item not in hand"
)

// DetectAndExecute runs the pipeline for one invocation and reports whether
// any action was dispatched. Hosts use the result to suppress the
// platform's default behavior. ctx may be nil, in which case a default
// context is built from actor, item and trigger.
func (e *Engine) DetectAndExecute(actor host.Actor, item host.Item, trigger ir.TriggerKind, ctx *mechanic.Context) bool {
	return e.run(actor, item, trigger, ctx, true).Executed
}

// DetectAndExecuteSimple is DetectAndExecute with a default context.
func (e *Engine) DetectAndExecuteSimple(actor host.Actor, item host.Item, trigger ir.TriggerKind) bool {
	return e.run(actor, item, trigger, nil, true).Executed
}

// DetectAndExecuteWithOutcome is DetectAndExecute returning the full
// outcome.
func (e *Engine) DetectAndExecuteWithOutcome(actor host.Actor, item host.Item, trigger ir.TriggerKind, ctx *mechanic.Context) Outcome {
	return e.run(actor, item, trigger, ctx, true)
}

// fire is the monitor's re-entry point. Gate notices are suppressed so a
// held item on cooldown does not message the actor every cycle.
func (e *Engine) fire(actor host.Actor, item host.Item, trigger ir.TriggerKind) bool {
	return e.run(actor, item, trigger, nil, false).Executed
}

func (e *Engine) run(actor host.Actor, item host.Item, trigger ir.TriggerKind, ctx *mechanic.Context, notify bool) Outcome {
	e.invocations.Add(1)
	out := Outcome{Trigger: trigger}
	if actor != nil {
		out.ActorID = actor.ID()
	}

	// 1. validate
	if reason := validate(actor, item, trigger); reason != "" {
		out.Stage, out.Reason = StageInvalid, reason
		if reason == reasonUnknownTrigger {
			slog.Warn("unknown trigger", "actor", out.ActorID, "trigger", string(trigger))
		}
		return out
	}
	out.ItemID = item.DefinitionID()

	// 2. resolve
	def, ok := e.provider.Lookup(item.DefinitionID())
	if !ok || def == nil {
		out.Stage = StageUnresolved
		return out
	}

	// 3. trigger presence
	if !def.HasTrigger(trigger) {
		out.Stage = StageNoTrigger
		return out
	}

	// 4. cooldown
	cd := def.Item.CooldownSeconds
	key := cooldown.Key(actor.ID(), def.ID(), trigger)
	if cd > 0 && e.cooldowns.IsActive(key) {
		out.Stage, out.Reason = StageCooldown, "cooldown active"
		out.Remaining = e.cooldowns.Remaining(key)
		if notify {
			actor.SendMessage(e.messages.Format(messages.KeyCooldown, "time", strconv.FormatInt(out.Remaining, 10)))
		}
		slog.Debug("cooldown active",
			"actor", actor.ID(),
			"item", def.ID(),
			"trigger", trigger.Name(),
			"remaining", out.Remaining,
		)
		return out
	}

	// 5. permission
	if perm := def.Item.Permission; perm != "" && !actor.HasPermission(perm) {
		out.Stage, out.Reason = StagePermission, "missing permission "+perm
		if notify {
			actor.SendMessage(e.messages.Get(messages.KeyNoPermission))
		}
		return out
	}

	// 6. per-action evaluation and dispatch
	if ctx == nil {
		ctx = mechanic.NewContext(actor, item, trigger, mechanic.WithDefinition(def))
	} else if ctx.Definition() == nil {
		ctx = ctx.With(mechanic.WithDefinition(def))
	}
	out.Stage = StageActions
	out.ID = e.ids.Generate()
	out.Seq = e.seq.Next()
	id := out.ID

	for _, a := range def.Actions(trigger) {
		if !e.eligible(ctx, a) {
			out.Skipped++
			continue
		}
		if d := a.DelayTicks(); d > 0 {
			e.sched.Schedule(d, func() { e.runDelayed(ctx, a, id) })
			out.Scheduled++
		} else if !e.execute(ctx, a, id) {
			out.Failed++
		}
		out.Dispatched = append(out.Dispatched, a.Kind())
	}
	out.Executed = len(out.Dispatched) > 0

	// 7. settle
	if out.Executed {
		e.executed.Add(1)
		if cd > 0 {
			e.cooldowns.Set(key, cd)
		}
		if def.Item.Consumable {
			out.Consumed = e.consume(actor, item, def)
		}
	}

	slog.Debug("invocation settled",
		"id", out.ID,
		"seq", out.Seq,
		"actor", out.ActorID,
		"item", out.ItemID,
		"trigger", trigger.Name(),
		"dispatched", len(out.Dispatched),
		"scheduled", out.Scheduled,
		"skipped", out.Skipped,
		"failed", out.Failed,
	)
	if e.journal != nil {
		if !e.journal.Record(out.firing(e.clock.Now().UnixMilli(), def.Hash)) {
			slog.Warn("journal record dropped", "id", out.ID, "seq", out.Seq)
		}
	}
	return out
}

// validate returns the reason the invocation is invalid, or "".
func validate(actor host.Actor, item host.Item, trigger ir.TriggerKind) string {
	if actor == nil || !actor.Online() {
		return reasonNoActor
	}
	if host.IsEmpty(item) {
		return reasonEmptyItem
	}
	if !trigger.Valid() {
		return reasonUnknownTrigger
	}
	if trigger.RequiresInHand() {
		inv := actor.Inventory()
		if inv == nil || (!sameStack(item, inv.MainHand()) && !sameStack(item, inv.OffHand())) {
			return reasonNotInHand
		}
	}
	return ""
}

// sameStack reports whether a and b are the same stack: the same instance,
// or equal definition, material and amount.
func sameStack(a, b host.Item) bool {
	if host.IsEmpty(a) || host.IsEmpty(b) {
		return false
	}
	if a == b {
		return true
	}
	return a.DefinitionID() == b.DefinitionID() &&
		a.Material() == b.Material() &&
		a.Amount() == b.Amount()
}

// eligible evaluates a's conditions and guard. A panic counts as not
// eligible.
func (e *Engine) eligible(ctx *mechanic.Context, a mechanic.Action) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("action guard panicked",
				"kind", a.Kind(),
				"actor", ctx.ActorID(),
				"item", ctx.DefinitionID(),
				"panic", fmt.Sprint(r),
			)
			ok = false
		}
	}()
	return e.conditions.Evaluate(ctx, a.Conditions()) && a.CanExecute(ctx)
}

// execute runs a and reports whether the effect applied. Failures and
// panics are logged and counted; they never propagate.
func (e *Engine) execute(ctx *mechanic.Context, a mechanic.Action, id string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			e.failures.Add(1)
			slog.Error("action panicked",
				"id", id,
				"kind", a.Kind(),
				"actor", ctx.ActorID(),
				"item", ctx.DefinitionID(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	if !a.Execute(ctx) {
		e.failures.Add(1)
		err := &Error{
			Code:    ErrCodeExecutionFailure,
			Message: "action " + a.Kind() + " did not apply",
			ActorID: ctx.ActorID(),
			ItemID:  ctx.DefinitionID(),
			Trigger: ctx.Trigger(),
		}
		slog.Error("action failed", "id", id, "error", err)
		return false
	}
	return true
}

func (e *Engine) runDelayed(ctx *mechanic.Context, a mechanic.Action, id string) {
	if actor := ctx.Actor(); actor == nil || !actor.Online() {
		slog.Debug("delayed action skipped: actor offline", "id", id, "kind", a.Kind())
		return
	}
	e.execute(ctx, a, id)
}

// consume takes one from item and stops monitoring when the stack runs
// out. It reports whether anything was taken.
func (e *Engine) consume(actor host.Actor, item host.Item, def *mechanic.Definition) bool {
	if item == nil || item.Amount() <= 0 {
		return false
	}
	left := item.Amount() - 1
	item.SetAmount(left)
	if left <= 0 {
		e.monitor.Stop(actor.ID(), def.ID())
		slog.Debug("item depleted", "actor", actor.ID(), "item", def.ID())
	}
	return true
}
