package mechanic

import "github.com/roach88/mechanics/internal/ir"

// Action is one effect unit under a trigger.
//
// CanExecute is the eligibility guard; Execute applies the effect and
// returns false when it could not be applied. Neither may block.
type Action interface {
	Kind() string
	RequiresTarget() bool
	DelayTicks() int
	Conditions() []ir.Condition
	CanExecute(ctx *Context) bool
	Execute(ctx *Context) bool
}
