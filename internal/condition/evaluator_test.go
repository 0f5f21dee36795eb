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
	"github.com/roach88/mechanics/internal/testutil"
)

type fixture struct {
	clock *testutil.FakeClock
	srv   *sim.Server
	actor *sim.Actor
	eval  *Evaluator
}

func setup(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.NewFakeClock()
	srv := sim.NewServer()
	return &fixture{
		clock: clock,
		srv:   srv,
		actor: srv.AddActor("p1", "Steve", "world"),
		eval:  New(WithClock(clock)),
	}
}

func (f *fixture) ctx(opts ...mechanic.ContextOption) *mechanic.Context {
	return mechanic.NewContext(f.actor, nil, ir.TriggerRightClick, opts...)
}

func TestEvaluateEmptyListIsTrue(t *testing.T) {
	f := setup(t)
	assert.True(t, f.eval.Evaluate(f.ctx(), nil))
	assert.True(t, f.eval.Evaluate(f.ctx(), []ir.Condition{}))
}

func TestEvaluateWithoutActorIsFalse(t *testing.T) {
	f := setup(t)
	ctx := mechanic.NewContext(nil, nil, ir.TriggerRightClick)
	assert.False(t, f.eval.Evaluate(ctx, []ir.Condition{ir.IsDay()}))
	assert.True(t, f.eval.Evaluate(ctx, nil))
}

func TestConditionAndInverseIsFalse(t *testing.T) {
	f := setup(t)
	conds := []ir.Condition{
		ir.HealthBelow(10),
		ir.HealthAbove(10),
		ir.IsDay(),
		ir.InBiome("PLAINS"),
		ir.HasItem("DIAMOND", 1),
		ir.NewCondition("no_such_type"),
	}

	for _, c := range conds {
		t.Run(c.String(), func(t *testing.T) {
			assert.False(t, f.eval.Evaluate(f.ctx(), []ir.Condition{c, c.Invert()}))
		})
	}
}

func TestCacheHoldsWithinTTL(t *testing.T) {
	f := setup(t)
	conds := []ir.Condition{ir.HealthBelow(10)}

	require.False(t, f.eval.Evaluate(f.ctx(), conds))

	// State changes inside the TTL are not observed
	f.actor.SetHealth(5)
	f.clock.Advance(999 * time.Millisecond)
	assert.False(t, f.eval.Evaluate(f.ctx(), conds))

	// At the TTL boundary the entry is recomputed
	f.clock.Advance(time.Millisecond)
	assert.True(t, f.eval.Evaluate(f.ctx(), conds))
}

func TestCacheIsSharedByInverse(t *testing.T) {
	f := setup(t)
	c := ir.HealthBelow(10)

	require.False(t, f.eval.Check(f.ctx(), c))
	f.actor.SetHealth(5)

	// Served from the raw cache entry, then inverted
	assert.True(t, f.eval.Check(f.ctx(), c.Invert()))
	assert.Equal(t, 1, f.eval.Stats().Cached)
}

func TestZeroTTLDisablesCache(t *testing.T) {
	f := setup(t)
	eval := New(WithClock(f.clock), WithCacheTTL(0))
	c := ir.HealthBelow(10)

	require.False(t, eval.Check(f.ctx(), c))
	f.actor.SetHealth(5)
	assert.True(t, eval.Check(f.ctx(), c))
	assert.Equal(t, 0, eval.Stats().Cached)
}

func TestShortCircuit(t *testing.T) {
	f := setup(t)
	calls := 0
	require.NoError(t, f.eval.Register("counted", func(*mechanic.Context, ir.Condition) bool {
		calls++
		return true
	}, Uncached()))

	ok := f.eval.Evaluate(f.ctx(), []ir.Condition{ir.HealthBelow(1), ir.NewCondition("counted")})
	assert.False(t, ok)
	assert.Equal(t, 0, calls)

	ok = f.eval.Evaluate(f.ctx(), []ir.Condition{ir.HealthAbove(1), ir.NewCondition("counted")})
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestExtensionRegistry(t *testing.T) {
	f := setup(t)

	err := f.eval.Register("health_below", func(*mechanic.Context, ir.Condition) bool { return true })
	assert.ErrorIs(t, err, ErrBuiltin)
	assert.Error(t, f.eval.Register("", func(*mechanic.Context, ir.Condition) bool { return true }))

	require.NoError(t, f.eval.Register("Is_Admin", func(ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().HasPermission("admin")
	}))
	assert.True(t, f.eval.Known("is_admin"))
	assert.False(t, f.eval.Check(f.ctx(), ir.NewCondition("is_admin")))

	assert.True(t, f.eval.Unregister("is_admin"))
	assert.False(t, f.eval.Known("is_admin"))
	assert.False(t, f.eval.Unregister("is_admin"))
}

func TestUncachedExtensionIsRecomputed(t *testing.T) {
	f := setup(t)
	result := false
	require.NoError(t, f.eval.Register("flip", func(*mechanic.Context, ir.Condition) bool {
		return result
	}, Uncached()))

	c := ir.NewCondition("flip")
	assert.False(t, f.eval.Check(f.ctx(), c))
	result = true
	assert.True(t, f.eval.Check(f.ctx(), c))
}

func TestPanickingPredicateIsFalse(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.eval.Register("boom", func(*mechanic.Context, ir.Condition) bool {
		panic("kaboom")
	}))

	assert.False(t, f.eval.Check(f.ctx(), ir.NewCondition("boom")))
	assert.True(t, f.eval.Check(f.ctx(), ir.NewCondition("boom").Invert()))
}

func TestUnknownTypeIsFalseEvenInverted(t *testing.T) {
	f := setup(t)
	c := ir.NewCondition("levitating")
	assert.False(t, f.eval.Check(f.ctx(), c))
	assert.False(t, f.eval.Check(f.ctx(), c.Invert()))
	assert.Equal(t, 0, f.eval.Stats().Cached)
}

func TestInWorldDefault(t *testing.T) {
	f := setup(t)
	assert.True(t, f.eval.Check(f.ctx(), ir.TextCondition(TypeInWorld, "WORLD")))
	assert.False(t, f.eval.Check(f.ctx(), ir.TextCondition(TypeInWorld, "world_nether")))
	assert.Equal(t, 1, f.eval.Stats().Custom)
}

func TestSweepAndForget(t *testing.T) {
	f := setup(t)
	other := f.srv.AddActor("p2", "Alex", "world")

	f.eval.Check(f.ctx(), ir.IsDay())
	f.eval.Check(mechanic.NewContext(other, nil, ir.TriggerRightClick), ir.IsDay())
	assert.Equal(t, 2, f.eval.Stats().Cached)

	assert.Equal(t, 1, f.eval.ForgetActor("p2"))
	assert.Equal(t, 1, f.eval.Stats().Cached)

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, Stats{Cached: 1, Expired: 1, Custom: 1}, f.eval.Stats())
	assert.Equal(t, 1, f.eval.Sweep())
	assert.Equal(t, 0, f.eval.Stats().Cached)

	f.eval.Check(f.ctx(), ir.IsDay())
	f.eval.ClearCache()
	assert.Equal(t, 0, f.eval.Stats().Cached)
}

func TestTargetConditionsKeyOnTarget(t *testing.T) {
	f := setup(t)
	weak := f.srv.AddMob("zombie-1", "Zombie", 4)
	strong := f.srv.AddMob("zombie-2", "Zombie", 40)
	c := ir.NumberCondition(ir.CondTargetHealthBelow, 10)

	assert.True(t, f.eval.Check(f.ctx(mechanic.WithTarget(weak)), c))
	assert.False(t, f.eval.Check(f.ctx(mechanic.WithTarget(strong)), c))
	assert.False(t, f.eval.Check(f.ctx(), c))
}

var _ host.Clock = (*testutil.FakeClock)(nil)
