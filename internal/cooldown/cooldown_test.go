package cooldown

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/testutil"
)

func setup(t *testing.T, opts ...Option) (*Registry, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock()
	return New(append([]Option{WithClock(clock)}, opts...)...), clock
}

func TestKey(t *testing.T) {
	assert.Equal(t, "p1:fire_wand:RIGHT_CLICK", Key("p1", "fire_wand", ir.TriggerRightClick))
}

func TestSetAndExpire(t *testing.T) {
	r, clock := setup(t)
	r.Set("k", 5)

	assert.True(t, r.IsActive("k"))
	assert.Equal(t, int64(5), r.Remaining("k"))

	clock.Advance(4999 * time.Millisecond)
	assert.True(t, r.IsActive("k"))
	assert.Equal(t, int64(1), r.Remaining("k"))

	clock.Advance(time.Millisecond)
	assert.False(t, r.IsActive("k"))
	assert.Equal(t, int64(0), r.Remaining("k"))
	assert.Equal(t, 0, r.Len(), "expired entry is deleted on read")
}

func TestCachedActiveIsNotServedPastExpiry(t *testing.T) {
	r, clock := setup(t)
	r.Set("k", 2)

	clock.Advance(1500 * time.Millisecond)
	require.True(t, r.IsActive("k"))

	// The status entry is 500ms old and still inside its TTL, but the
	// cooldown itself has ended.
	clock.Advance(500 * time.Millisecond)
	assert.False(t, r.IsActive("k"))
}

func TestSetNonPositiveClears(t *testing.T) {
	r, _ := setup(t)
	r.Set("k", 5)
	r.Set("k", 0)
	assert.False(t, r.IsActive("k"))

	r.Set("k", 5)
	r.Set("k", -1)
	assert.False(t, r.IsActive("k"))
}

func TestRemainingIsMonotonic(t *testing.T) {
	r, clock := setup(t)
	r.Set("k", 5)

	prev := r.Remaining("k")
	for i := 0; i < 60; i++ {
		clock.Advance(97 * time.Millisecond)
		cur := r.Remaining("k")
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, int64(0))
		prev = cur
	}
	assert.Equal(t, int64(0), prev)
}

func TestUpdateOnlyExtends(t *testing.T) {
	r, _ := setup(t)
	r.Set("k", 5)

	assert.False(t, r.Update("k", 2))
	assert.Equal(t, int64(5), r.Remaining("k"))

	assert.True(t, r.Update("k", 10))
	assert.Equal(t, int64(10), r.Remaining("k"))

	assert.True(t, r.Update("fresh", 3))
	assert.True(t, r.IsActive("fresh"))
	assert.False(t, r.Update("fresh", 0))
}

func TestReduce(t *testing.T) {
	r, _ := setup(t)
	assert.False(t, r.Reduce("k", 1))

	r.Set("k", 10)
	assert.True(t, r.Reduce("k", 3))
	assert.Equal(t, int64(7), r.Remaining("k"))

	assert.True(t, r.Reduce("k", 7))
	assert.False(t, r.IsActive("k"))
	assert.Equal(t, 0, r.Len())
}

func TestReduceInvalidatesCachedStatus(t *testing.T) {
	r, clock := setup(t)
	r.Set("k", 3)
	require.True(t, r.IsActive("k"))

	require.True(t, r.Reduce("k", 2))
	clock.Advance(1001 * time.Millisecond)
	assert.False(t, r.IsActive("k"))
}

func TestClearActor(t *testing.T) {
	r, _ := setup(t)
	r.Set(Key("p1", "wand", ir.TriggerRightClick), 5)
	r.Set(Key("p1", "wand", ir.TriggerLeftClick), 5)
	r.Set(Key("p10", "wand", ir.TriggerRightClick), 5)

	assert.Equal(t, 2, r.ClearActor("p1"))
	assert.True(t, r.IsActive(Key("p10", "wand", ir.TriggerRightClick)), "prefix match must not spill into p10")
	assert.Equal(t, 1, r.Len())

	r.ClearAll()
	assert.Equal(t, 0, r.Len())
}

func TestActorCooldowns(t *testing.T) {
	r, clock := setup(t)
	r.Set(Key("p1", "wand", ir.TriggerRightClick), 5)
	r.Set(Key("p1", "orb", ir.TriggerPeriodic), 1)
	r.Set(Key("p2", "wand", ir.TriggerRightClick), 5)

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, map[string]int64{"wand:RIGHT_CLICK": 4}, r.ActorCooldowns("p1"))
}

func TestLazySweep(t *testing.T) {
	r, clock := setup(t, WithSweepInterval(time.Minute))
	for i := 0; i < 10; i++ {
		r.Set(fmt.Sprintf("old-%d", i), 1)
	}
	clock.Advance(2 * time.Second)
	assert.Equal(t, 10, r.Len(), "expired entries linger until a sweep")

	clock.Advance(time.Minute)
	r.Set("new", 5)
	assert.Equal(t, 1, r.Len())
}

func TestSweep(t *testing.T) {
	r, clock := setup(t)
	r.Set("a", 1)
	r.Set("b", 10)
	clock.Advance(2 * time.Second)

	assert.Equal(t, Stats{Active: 1, Expired: 1, Cached: 2, Healthy: true}, r.Stats())
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, Stats{Active: 1, Cached: 0, Healthy: true}, r.Stats())
}

func TestHealthLimit(t *testing.T) {
	r, _ := setup(t, WithHealthLimit(3))
	r.Set("a", 5)
	r.Set("b", 5)
	assert.True(t, r.Healthy())
	r.Set("c", 5)
	assert.False(t, r.Healthy())
	assert.Contains(t, r.DebugInfo(), "healthy=false")
}

func TestSnapshotRestore(t *testing.T) {
	r, clock := setup(t)
	r.Set("b", 10)
	r.Set("a", 5)
	r.Set("gone", 1)
	clock.Advance(2 * time.Second)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Key)
	assert.Equal(t, "b", snap[1].Key)

	restored := New(WithClock(clock))
	clock.Advance(4 * time.Second)
	assert.Equal(t, 1, restored.Restore(snap), "a expired in transit")
	assert.True(t, restored.IsActive("b"))
	assert.Equal(t, int64(4), restored.Remaining("b"))
}

func TestStatusCacheDisabled(t *testing.T) {
	r, _ := setup(t, WithStatusTTL(0))
	r.Set("k", 5)
	assert.True(t, r.IsActive("k"))
	r.Clear("k")
	assert.False(t, r.IsActive("k"))
}

func TestConcurrentAccess(t *testing.T) {
	r, clock := setup(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key(fmt.Sprintf("p%d", i), "wand", ir.TriggerRightClick)
			for j := 0; j < 50; j++ {
				r.Set(key, 5)
				r.IsActive(key)
				r.Remaining(key)
				clock.Advance(time.Millisecond)
			}
			r.ClearActor(fmt.Sprintf("p%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}
