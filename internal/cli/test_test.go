package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wandScenario = `name: wand
items:
  - items.yaml
actors:
  - id: p1
    health: 10
    main_hand:
      item: healing_wand
flow:
  - fire:
      actor: p1
      trigger: right_click
  - fire:
      actor: p1
      trigger: right_click
assertions:
  - type: journal_count
    count: 1
  - type: actor_state
    actor: p1
    health: 14
`

const failingScenario = `name: stubborn
items:
  - items.yaml
actors:
  - id: p1
    health: 10
    main_hand:
      item: healing_wand
flow:
  - fire:
      actor: p1
      trigger: right_click
assertions:
  - type: actor_state
    actor: p1
    health: 20
`

// scenarioDir writes the good item kit and the given scenarios to a
// temporary directory.
func scenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	kit, err := os.ReadFile("testdata/items/good/kit.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.yaml"), kit, 0644))
	for name, body := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0644))
	}
	return dir
}

type testResponse struct {
	Status string         `json:"status"`
	Data   TestResult     `json:"data"`
	Error  *ResponseError `json:"error"`
}

func TestTest_NoGoldenPasses(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wand": wandScenario})
	// items.yaml is not a scenario; keep it out of the run.
	out, _, err := execute(t, "test", dir, "--filter", "wand")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ wand (no golden file)")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_UpdateThenMatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wand": wandScenario})

	out, _, err := execute(t, "test", dir, "--filter", "wand", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ wand (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "wand.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `{"scenario_name":"wand"}`)

	out, _, err = execute(t, "test", dir, "--filter", "wand")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ wand\n")
}

func TestTest_GoldenMismatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wand": wandScenario})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "wand.golden"), []byte("stale\n"), 0644))

	out, _, err := execute(t, "test", dir, "--filter", "wand")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wand")
	assert.Contains(t, out, "run with --update")
}

func TestTest_FailedAssertionJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wand": wandScenario, "stubborn": failingScenario})

	out, _, err := execute(t, "--format", "json", "test", dir, "--filter", "[sw]*")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)

	for _, s := range resp.Data.Scenarios {
		if s.Name == "stubborn" {
			assert.False(t, s.Pass)
			require.NotEmpty(t, s.Errors)
			assert.Contains(t, s.Errors[0], "actor_state")
		}
	}
}

func TestTest_UnloadableScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken": "name: broken\nflow: []\n"})

	out, _, err := execute(t, "test", dir, "--filter", "broken")
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "load:")
}

func TestTest_NoScenarios(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_BadFilter(t *testing.T) {
	_, _, err := execute(t, "test", t.TempDir(), "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "wand.golden"), goldenFilePath(filepath.Join("s", "wand.yaml")))
}
