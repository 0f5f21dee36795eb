package mechanic

import (
	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
)

// Context is the immutable snapshot of one invocation: who acted, with
// which item, on which trigger, where, and against what.
//
// Build it with NewContext. Actions read it; nothing mutates it. Derived
// copies are produced by the With* methods.
type Context struct {
	actor      host.Actor
	item       host.Item
	definition *Definition
	trigger    ir.TriggerKind

	location       host.Location
	target         host.Entity
	targetLocation *host.Location
	damage         float64
	hasDamage      bool
	aux            string
	cancelled      bool
}

// ContextOption configures a Context under construction.
type ContextOption func(*Context)

// WithLocation overrides the origin location.
func WithLocation(loc host.Location) ContextOption {
	return func(c *Context) { c.location = loc }
}

// WithTarget sets the target entity.
func WithTarget(e host.Entity) ContextOption {
	return func(c *Context) { c.target = e }
}

// WithTargetLocation sets a target position, e.g. a clicked block.
func WithTargetLocation(loc host.Location) ContextOption {
	return func(c *Context) {
		l := loc
		c.targetLocation = &l
	}
}

// WithDamage records the damage amount of a combat trigger.
func WithDamage(amount float64) ContextOption {
	return func(c *Context) {
		c.damage = amount
		c.hasDamage = true
	}
}

// WithAux attaches a free-form string, e.g. a chat message.
func WithAux(s string) ContextOption {
	return func(c *Context) { c.aux = s }
}

// WithCancelled marks the originating host event as cancelled.
func WithCancelled(cancelled bool) ContextOption {
	return func(c *Context) { c.cancelled = cancelled }
}

// WithDefinition binds the resolved item definition.
func WithDefinition(def *Definition) ContextOption {
	return func(c *Context) { c.definition = def }
}

// NewContext builds a Context. The origin location defaults to the actor's
// current location.
func NewContext(actor host.Actor, item host.Item, trigger ir.TriggerKind, opts ...ContextOption) *Context {
	c := &Context{
		actor:   actor,
		item:    item,
		trigger: trigger,
	}
	if actor != nil {
		c.location = actor.Location()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied.
func (c *Context) With(opts ...ContextOption) *Context {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Accessors for the invocation fields.
func (c *Context) Actor() host.Actor       { return c.actor }
func (c *Context) Item() host.Item         { return c.item }
func (c *Context) Definition() *Definition { return c.definition }
func (c *Context) Trigger() ir.TriggerKind { return c.trigger }
func (c *Context) Location() host.Location { return c.location }
func (c *Context) Target() host.Entity     { return c.target }
func (c *Context) HasTarget() bool         { return c.target != nil }
func (c *Context) Aux() string             { return c.aux }
func (c *Context) Cancelled() bool         { return c.cancelled }
func (c *Context) Damage() (float64, bool) { return c.damage, c.hasDamage }
func (c *Context) TargetLocation() (host.Location, bool) {
	if c.targetLocation == nil {
		return host.Location{}, false
	}
	return *c.targetLocation, true
}

// TargetActor returns the target when it is a player.
func (c *Context) TargetActor() (host.Actor, bool) {
	a, ok := c.target.(host.Actor)
	return a, ok
}

// TargetLiving returns the target when it is a living entity.
func (c *Context) TargetLiving() (host.LivingEntity, bool) {
	l, ok := c.target.(host.LivingEntity)
	return l, ok
}

// ActorID returns the actor's ID, or "" without an actor.
func (c *Context) ActorID() string {
	if c.actor == nil {
		return ""
	}
	return c.actor.ID()
}

// DefinitionID returns the bound definition's ID, falling back to the
// item's tag.
func (c *Context) DefinitionID() string {
	if c.definition != nil {
		return c.definition.ID()
	}
	if c.item != nil {
		return c.item.DefinitionID()
	}
	return ""
}
