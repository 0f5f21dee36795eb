package messages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"&cRed", "§cRed"},
		{"&AGreen &lbold", "§aGreen §lbold"},
		{"fish & chips", "fish & chips"},
		{"trailing &", "trailing &"},
		{"&zNope", "&zNope"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Colorize(tt.in))
		})
	}
}

func TestStripColor(t *testing.T) {
	assert.Equal(t, "Red bold", StripColor(Colorize("&cRed &lbold")))
	assert.Equal(t, "plain", StripColor("plain"))
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, "§cYou don't have permission to use this item.", c.Get(KeyNoPermission))
	assert.Equal(t, "§cYou must wait §e3s §cbefore using this again.", c.Format(KeyCooldown, "time", "3"))
	assert.Equal(t, "§cMessage not found: nope.nope", c.Get("nope.nope"))
	assert.Contains(t, c.Keys(), KeyHealed)
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "a 1 b 2", Substitute("a {x} b {y}", "x", "1", "y", "2"))
	assert.Equal(t, "a {x}", Substitute("a {x}", "x"))
	assert.Equal(t, "{x}{x}", Substitute("{y}{y}", "y", "{x}"))
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  cooldown: "&6Wait {time}"
extra:
  lines:
    - one
    - two
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "§6Wait 5", c.Format(KeyCooldown, "time", "5"))
	assert.Equal(t, "one\ntwo", c.Get("extra.lines"))

	// Entries the file does not mention keep their defaults
	assert.Equal(t, "§cYou don't have permission to use this item.", c.Get(KeyNoPermission))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("items: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
