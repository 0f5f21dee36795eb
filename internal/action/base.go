package action

import (
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

// Base holds the fields every action shares.
type Base struct {
	kind           string
	requiresTarget bool
	delayTicks     int
	conditions     []ir.Condition
}

// NewBase builds a Base from a spec. Negative delays are clamped to 0.
func NewBase(spec ir.ActionSpec, requiresTarget bool) Base {
	delay := spec.DelayTicks
	if delay < 0 {
		delay = 0
	}
	conds := make([]ir.Condition, len(spec.Conditions))
	copy(conds, spec.Conditions)
	return Base{
		kind:           spec.Kind,
		requiresTarget: requiresTarget,
		delayTicks:     delay,
		conditions:     conds,
	}
}

// Kind, RequiresTarget, DelayTicks and Conditions implement mechanic.Action.
func (b Base) Kind() string               { return b.kind }
func (b Base) RequiresTarget() bool       { return b.requiresTarget }
func (b Base) DelayTicks() int            { return b.delayTicks }
func (b Base) Conditions() []ir.Condition { return b.conditions }

// CanExecute is false when a target is required and the context has none.
func (b Base) CanExecute(ctx *mechanic.Context) bool {
	if ctx == nil || ctx.Actor() == nil {
		return false
	}
	return !b.requiresTarget || ctx.HasTarget()
}
