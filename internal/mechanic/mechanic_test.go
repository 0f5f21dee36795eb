package mechanic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/sim"
)

type stubAction struct{ kind string }

func (a stubAction) Kind() string                 { return a.kind }
func (a stubAction) RequiresTarget() bool         { return false }
func (a stubAction) DelayTicks() int              { return 0 }
func (a stubAction) Conditions() []ir.Condition   { return nil }
func (a stubAction) CanExecute(ctx *Context) bool { return true }
func (a stubAction) Execute(ctx *Context) bool    { return true }

func testDefinition(id string) *Definition {
	return &Definition{
		Item: ir.ItemDefinition{ID: id},
		Triggers: map[ir.TriggerKind][]Action{
			ir.TriggerRightClick: {stubAction{"heal_player"}, stubAction{"play_sound"}},
		},
	}
}

func TestNewContext_DefaultsToActorLocation(t *testing.T) {
	srv := sim.NewServer()
	actor := srv.AddActor("p1", "Alex", "world")
	item := sim.NewItem("healing_wand", "BLAZE_ROD", 1)

	ctx := NewContext(actor, item, ir.TriggerRightClick)

	assert.Equal(t, actor.Location(), ctx.Location())
	assert.Equal(t, "p1", ctx.ActorID())
	assert.Equal(t, "healing_wand", ctx.DefinitionID())
	assert.Equal(t, ir.TriggerRightClick, ctx.Trigger())
	assert.False(t, ctx.HasTarget())
	assert.False(t, ctx.Cancelled())

	_, ok := ctx.Damage()
	assert.False(t, ok)
	_, ok = ctx.TargetLocation()
	assert.False(t, ok)
}

func TestNewContext_Options(t *testing.T) {
	srv := sim.NewServer()
	actor := srv.AddActor("p1", "Alex", "world")
	zombie := srv.AddMob("zombie", "Zombie", 20)
	block := host.Location{World: "world", X: 4, Y: 64, Z: -2}
	def := testDefinition("ember_blade")

	ctx := NewContext(actor, nil, ir.TriggerAttackEntity,
		WithTarget(zombie),
		WithTargetLocation(block),
		WithDamage(6.5),
		WithAux("hello"),
		WithCancelled(true),
		WithDefinition(def),
	)

	assert.True(t, ctx.HasTarget())
	living, ok := ctx.TargetLiving()
	require.True(t, ok)
	assert.Equal(t, "zombie", living.ID())
	_, isActor := ctx.TargetActor()
	assert.False(t, isActor)

	loc, ok := ctx.TargetLocation()
	require.True(t, ok)
	assert.Equal(t, block, loc)
	dmg, ok := ctx.Damage()
	require.True(t, ok)
	assert.Equal(t, 6.5, dmg)
	assert.Equal(t, "hello", ctx.Aux())
	assert.True(t, ctx.Cancelled())
	assert.Equal(t, "ember_blade", ctx.DefinitionID())
}

func TestContext_WithCopies(t *testing.T) {
	srv := sim.NewServer()
	actor := srv.AddActor("p1", "Alex", "world")
	base := NewContext(actor, nil, ir.TriggerJump)

	derived := base.With(WithAux("derived"))

	assert.Equal(t, "", base.Aux())
	assert.Equal(t, "derived", derived.Aux())
	assert.Equal(t, base.Actor(), derived.Actor())
}

func TestContext_NoActor(t *testing.T) {
	ctx := NewContext(nil, nil, ir.TriggerPlayerJoin)
	assert.Equal(t, "", ctx.ActorID())
	assert.Equal(t, "", ctx.DefinitionID())
}

func TestDefinition_Triggers(t *testing.T) {
	def := testDefinition("healing_wand")

	assert.Equal(t, "healing_wand", def.ID())
	assert.True(t, def.HasTrigger(ir.TriggerRightClick))
	assert.False(t, def.HasTrigger(ir.TriggerLeftClick))
	require.Len(t, def.Actions(ir.TriggerRightClick), 2)
	assert.Equal(t, "play_sound", def.Actions(ir.TriggerRightClick)[1].Kind())

	var nilDef *Definition
	assert.False(t, nilDef.HasTrigger(ir.TriggerRightClick))
	assert.Nil(t, nilDef.Actions(ir.TriggerRightClick))
}

func TestRegistry_PutLookupReplace(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("healing_wand")
	assert.False(t, ok)

	first := testDefinition("healing_wand")
	reg.Put(first)
	reg.Put(testDefinition("blink_pearl"))

	got, ok := reg.Lookup("healing_wand")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{"blink_pearl", "healing_wand"}, reg.IDs())

	second := testDefinition("healing_wand")
	reg.Put(second)
	got, _ = reg.Lookup("healing_wand")
	assert.Same(t, second, got)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			reg.Put(testDefinition(id))
			_, ok := reg.Lookup(id)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, reg.Len())
}
