package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/ir"
)

type triggersResponse struct {
	Status string       `json:"status"`
	Data   []TriggerRow `json:"data"`
}

func TestTriggers_Taxonomy(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "triggers")
	require.NoError(t, err)

	var resp triggersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, len(ir.Triggers()))

	first := resp.Data[0]
	assert.Equal(t, "right_click", first.Key)
	assert.Equal(t, "RIGHT_CLICK", first.Name)
	assert.Equal(t, "Right Click", first.DisplayName)
	assert.True(t, first.RequiresInHand)
	assert.Empty(t, first.Items)
}

func TestTriggers_TitleCase(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "triggers")
	require.NoError(t, err)

	var resp triggersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	names := make(map[string]string)
	for _, r := range resp.Data {
		names[r.Key] = r.DisplayName
	}
	assert.Equal(t, "Shift + Right Click", names["shift_right_click"])
	assert.Equal(t, "Interact With Block", names["interact_block"])
}

func TestTriggers_UsedByItems(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "triggers", "--used", "testdata/items/good")
	require.NoError(t, err)

	var resp triggersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)

	assert.Equal(t, "right_click", resp.Data[0].Key)
	assert.ElementsMatch(t, []string{"healing_wand", "blink_pearl"}, resp.Data[0].Items)
	assert.Equal(t, "while_held", resp.Data[1].Key)
	assert.Equal(t, []string{"frost_orb"}, resp.Data[1].Items)
	assert.True(t, resp.Data[1].Periodic)
}

func TestTriggers_Text(t *testing.T) {
	out, _, err := execute(t, "triggers", "testdata/items/good")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "Right Click")
	assert.Contains(t, out, "in-hand")
	assert.Contains(t, out, "periodic")
	assert.Contains(t, out, "frost_orb")
}

func TestTriggers_UsedRequiresPath(t *testing.T) {
	_, _, err := execute(t, "triggers", "--used")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
