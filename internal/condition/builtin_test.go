package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/sim"
)

func TestBuiltinCatalog(t *testing.T) {
	tests := []struct {
		cond    string
		prepare func(f *fixture)
		want    bool
	}{
		{cond: "health_above:19", want: true},
		{cond: "health_below:20", want: false},
		{cond: "health_below:10", prepare: func(f *fixture) { f.actor.SetHealth(5) }, want: true},
		{cond: "health_percentage_above:99", want: true},
		{cond: "health_percentage_below:50", prepare: func(f *fixture) { f.actor.SetHealth(8) }, want: true},
		{cond: "hunger_above:19", want: true},
		{cond: "hunger_below:6", prepare: func(f *fixture) { f.actor.SetFood(3) }, want: true},
		{cond: "level_above:4", prepare: func(f *fixture) { f.actor.SetLevel(5) }, want: true},
		{cond: "level_below:1", want: true},
		{cond: "has_potion_effect:speed", prepare: func(f *fixture) {
			require.NoError(t, f.actor.AddEffect(host.Effect{Name: "SPEED", DurationTicks: 100}))
		}, want: true},
		{cond: "has_potion_effect:SPEED", want: false},
		{cond: "missing_potion_effect:speed", want: true},
		{cond: "has_item:DIAMOND*3", prepare: func(f *fixture) {
			f.actor.Hands().Add(sim.NewItem("", "DIAMOND", 3))
		}, want: true},
		{cond: "has_item:diamond*4", prepare: func(f *fixture) {
			f.actor.Hands().Add(sim.NewItem("", "DIAMOND", 3))
		}, want: false},
		{cond: "has_item:DIAMOND", want: false},
		{cond: "missing_item:DIAMOND", want: true},
		{cond: "has_item:DIAMOND*x", want: false},
		{cond: "has_permission:items.fire", prepare: func(f *fixture) { f.actor.Grant("items.fire") }, want: true},
		{cond: "missing_permission:items.fire", want: true},
		{cond: "is_day", want: true},
		{cond: "is_night", prepare: func(f *fixture) { f.srv.World("world").SetTime(18000) }, want: true},
		{cond: "is_day", prepare: func(f *fixture) { f.srv.World("world").SetTime(13000) }, want: false},
		{cond: "is_raining", prepare: func(f *fixture) { f.srv.World("world").SetStorming(true) }, want: true},
		{cond: "is_clear", want: true},
		{cond: "y_above:63", want: true},
		{cond: "y_below:64", want: false},
		{cond: "in_biome:plains", want: true},
		{cond: "in_biome:DESERT", want: false},
		{cond: "is_sneaking", prepare: func(f *fixture) { require.NoError(t, f.actor.SetState(sim.StateSneaking, true)) }, want: true},
		{cond: "is_sprinting", want: false},
		{cond: "is_flying", want: false},
		{cond: "is_in_water", prepare: func(f *fixture) { require.NoError(t, f.actor.SetState(sim.StateInWater, true)) }, want: true},
		{cond: "is_on_ground", want: true},
		{cond: "is_in_combat", want: false},
		{cond: "is_in_combat", prepare: func(f *fixture) { f.actor.Damage(1, f.clock.Now().Add(-9*time.Second)) }, want: true},
		{cond: "is_in_combat", prepare: func(f *fixture) { f.actor.Damage(1, f.clock.Now().Add(-10*time.Second)) }, want: false},
		{cond: "target_is_player", want: false},
	}

	for _, tt := range tests {
		name := tt.cond
		if tt.prepare != nil {
			name += "/prepared"
		}
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			if tt.prepare != nil {
				tt.prepare(f)
			}
			c := ir.MustParseCondition(tt.cond)
			assert.Equal(t, tt.want, f.eval.Check(f.ctx(), c))
		})
	}
}

func TestTargetIsPlayer(t *testing.T) {
	f := setup(t)
	other := f.srv.AddActor("p2", "Alex", "world")
	mob := f.srv.AddMob("m1", "Cow", 10)
	c := ir.NewCondition(ir.CondTargetIsPlayer)

	assert.True(t, f.eval.Check(f.ctx(mechanic.WithTarget(other)), c))
	assert.False(t, f.eval.Check(f.ctx(mechanic.WithTarget(mob)), c))
	assert.False(t, f.eval.Check(f.ctx(mechanic.WithTarget(sim.Marker{EntityID: "arrow"})), c))
}

func TestYUsesContextLocation(t *testing.T) {
	f := setup(t)
	high := f.ctx(mechanic.WithLocation(host.Location{World: "world", Y: 120}))
	assert.True(t, f.eval.Check(high, ir.NumberCondition(ir.CondYAbove, 100)))
}

func TestItemRequirement(t *testing.T) {
	tests := []struct {
		in       string
		material string
		amount   int
		ok       bool
	}{
		{"DIAMOND", "DIAMOND", 1, true},
		{"diamond*3", "DIAMOND", 3, true},
		{"IRON_INGOT:16", "IRON_INGOT", 16, true},
		{"DIAMOND*-1", "", 0, false},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			material, amount, ok := itemRequirement(ir.TextCondition(ir.CondHasItem, tt.in))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.material, material)
			assert.Equal(t, tt.amount, amount)
		})
	}
}

func TestBuiltinTypesCoverCatalog(t *testing.T) {
	assert.Len(t, BuiltinTypes(), 29)
}
