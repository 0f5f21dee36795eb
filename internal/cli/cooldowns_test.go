package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/cooldown"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/store"
)

// cooldownDB creates a database holding two live cooldowns and one that
// has already expired.
func cooldownDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooldowns.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	now := time.Now()
	require.NoError(t, st.SaveCooldowns(context.Background(), []cooldown.Entry{
		{Key: cooldown.Key("p1", "healing_wand", ir.TriggerRightClick), ExpiresAtMillis: now.Add(time.Hour).UnixMilli()},
		{Key: cooldown.Key("p2", "blink_pearl", ir.TriggerRightClick), ExpiresAtMillis: now.Add(time.Hour).UnixMilli()},
		{Key: cooldown.Key("p1", "frost_orb", ir.TriggerWhileHeld), ExpiresAtMillis: now.Add(-time.Hour).UnixMilli()},
	}))
	return path
}

type cooldownsResponse struct {
	Status string        `json:"status"`
	Data   []CooldownRow `json:"data"`
}

func TestCooldowns_ActiveOnly(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "cooldowns", "--db", cooldownDB(t))
	require.NoError(t, err)

	var resp cooldownsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "p1:healing_wand:RIGHT_CLICK", resp.Data[0].Key)
	assert.InDelta(t, 3600, resp.Data[0].RemainingSeconds, 5)
	assert.Equal(t, "p2:blink_pearl:RIGHT_CLICK", resp.Data[1].Key)
}

func TestCooldowns_AllIncludesExpired(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "cooldowns", "--db", cooldownDB(t), "--all")
	require.NoError(t, err)

	var resp cooldownsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "p1:frost_orb:WHILE_HELD", resp.Data[0].Key)
	assert.Zero(t, resp.Data[0].RemainingSeconds)
}

func TestCooldowns_ActorFilter(t *testing.T) {
	out, _, err := execute(t, "cooldowns", "--db", cooldownDB(t), "--actor", "p2", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "p2:blink_pearl:RIGHT_CLICK")
	assert.NotContains(t, out, "p1:")
}

func TestCooldowns_TextExpired(t *testing.T) {
	out, _, err := execute(t, "cooldowns", "--db", cooldownDB(t), "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "expired")
}

func TestCooldowns_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "cooldowns", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No active cooldowns.")
}
