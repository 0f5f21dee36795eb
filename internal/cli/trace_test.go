package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/store"
)

// journalDB creates a database holding three firings.
func journalDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	firings := []ir.Firing{
		{ID: "f1", Seq: 1, AtMillis: 1700000000000, ActorID: "p1", ItemID: "healing_wand", Trigger: ir.TriggerRightClick,
			Executed: true, Actions: []string{"heal_player", "play_sound"}, Scheduled: 1, DefinitionHash: "h1"},
		{ID: "f2", Seq: 2, AtMillis: 1700000001000, ActorID: "p2", ItemID: "blink_pearl", Trigger: ir.TriggerRightClick,
			Executed: true, Actions: []string{"launch_player"}, Consumed: true, DefinitionHash: "h2"},
		{ID: "f3", Seq: 3, AtMillis: 1700000002000, ActorID: "p1", ItemID: "frost_orb", Trigger: ir.TriggerWhileHeld,
			Actions: []string{}, Skipped: 1, DefinitionHash: "h3"},
	}
	require.NoError(t, st.WriteFirings(context.Background(), firings))
	return path
}

type traceResponse struct {
	Status string         `json:"status"`
	Data   TraceResult    `json:"data"`
	Error  *ResponseError `json:"error"`
}

func TestTrace_AllFirings(t *testing.T) {
	db := journalDB(t)

	out, _, err := execute(t, "--format", "json", "trace", "--db", db)
	require.NoError(t, err)

	var resp traceResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Firings, 3)
	assert.Equal(t, int64(1), resp.Data.Firings[0].Seq)
	assert.Equal(t, []string{"heal_player", "play_sound"}, resp.Data.Firings[0].Actions)

	stats := resp.Data.Stats
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Executed)
	assert.Equal(t, 1, stats.Consumed)
	assert.Equal(t, int64(3), stats.LastSeq)
	assert.Equal(t, map[string]int{"right_click": 2, "while_held": 1}, stats.ByTrigger)
}

func TestTrace_Filters(t *testing.T) {
	db := journalDB(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"actor", []string{"--actor", "p1"}, []string{"f1", "f3"}},
		{"item", []string{"--item", "blink_pearl"}, []string{"f2"}},
		{"trigger", []string{"--trigger", "WHILE_HELD"}, []string{"f3"}},
		{"after", []string{"--after", "1"}, []string{"f2", "f3"}},
		{"limit", []string{"--limit", "1"}, []string{"f1"}},
		{"combined", []string{"--actor", "p1", "--trigger", "right_click"}, []string{"f1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "trace", "--db", db}, tt.args...)
			out, _, err := execute(t, args...)
			require.NoError(t, err)

			var resp traceResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			ids := make([]string, len(resp.Data.Firings))
			for i, f := range resp.Data.Firings {
				ids[i] = f.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTrace_Text(t *testing.T) {
	out, _, err := execute(t, "trace", "--db", journalDB(t))
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "heal_player,play_sound")
	assert.Contains(t, out, "1 scheduled")
	assert.Contains(t, out, "consumed")
	assert.Contains(t, out, "nothing ran, 1 skipped")
	assert.Contains(t, out, "3 firing(s), 2 executed, 1 consumed, last seq 3")
	assert.Contains(t, out, "2023-11-14T22:13:20Z")
}

func TestTrace_NoMatches(t *testing.T) {
	out, _, err := execute(t, "trace", "--db", journalDB(t), "--actor", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No firings found.")
}

func TestTrace_UnknownTrigger(t *testing.T) {
	_, _, err := execute(t, "trace", "--db", journalDB(t), "--trigger", "moonwalk")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown trigger "moonwalk"`)
}

func TestTrace_MissingDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.db")
	_, _, err := execute(t, "trace", "--db", missing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, missing)
}

func TestTrace_NoDatabaseConfigured(t *testing.T) {
	_, _, err := execute(t, "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MECHANICS_DB")
}

func TestFiringResult(t *testing.T) {
	assert.Equal(t, "ok", firingResult(ir.Firing{Executed: true}))
	assert.Equal(t, "1 scheduled, 2 failed", firingResult(ir.Firing{Executed: true, Scheduled: 1, Failed: 2}))
}
