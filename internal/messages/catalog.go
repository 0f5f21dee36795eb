// Package messages provides the user-facing notice catalog and the colour
// code translation shared with the send_message action.
package messages

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Well-known message paths.
const (
	KeyCooldown     = "items.cooldown"
	KeyNoPermission = "general.no-permission"
	KeyHealed       = "items.healed"
	KeyItemNotFound = "items.not-found"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Catalog maps dotted paths to message templates.
// Templates use {name} placeholders and & colour codes.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]string
}

// Default returns a catalog holding the built-in messages.
func Default() *Catalog {
	c, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("messages: invalid embedded defaults: %v", err))
	}
	return c
}

// Parse reads a YAML messages document. Nested maps flatten to dotted
// paths: items: {cooldown: ...} becomes items.cooldown.
func Parse(data []byte) (*Catalog, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	c := &Catalog{entries: make(map[string]string)}
	if err := flatten("", root, c.entries); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a messages file and layers it over the defaults, so a file
// only needs the entries it overrides.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	overrides, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c := Default()
	for k, v := range overrides.entries {
		c.entries[k] = v
	}
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[path] = val
		case map[string]any:
			if err := flatten(path, val, out); err != nil {
				return err
			}
		case []any:
			lines := make([]string, 0, len(val))
			for _, line := range val {
				lines = append(lines, fmt.Sprint(line))
			}
			out[path] = strings.Join(lines, "\n")
		case nil:
			out[path] = ""
		default:
			out[path] = fmt.Sprint(val)
		}
	}
	return nil
}

// Raw returns the untranslated template at path.
func (c *Catalog) Raw(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[path]
	return s, ok
}

// Set adds or replaces a template.
func (c *Catalog) Set(path, template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = template
}

// Get returns the colourized message at path, or a visible placeholder
// naming the missing path.
func (c *Catalog) Get(path string) string {
	s, ok := c.Raw(path)
	if !ok {
		s = "&cMessage not found: " + path
	}
	return Colorize(s)
}

// Format returns Get(path) with {key} placeholders replaced.
// Arguments are key/value pairs.
func (c *Catalog) Format(path string, kv ...string) string {
	msg := c.Get(path)
	return Substitute(msg, kv...)
}

// Substitute replaces {key} placeholders in s. Arguments are key/value
// pairs; a trailing odd key is ignored.
func Substitute(s string, kv ...string) string {
	if len(kv) < 2 {
		return s
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Keys returns every path, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
