package loader

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// rawFile is the top level of an item file. Items stay as a node so each
// item can be decoded, and rejected, on its own.
type rawFile struct {
	Items yaml.Node `yaml:"items"`
}

type rawItem struct {
	DisplayName  string       `yaml:"display-name"`
	Material     string       `yaml:"material"`
	Lore         []string     `yaml:"lore"`
	Cooldown     int          `yaml:"cooldown"`
	Consumable   bool         `yaml:"consumable"`
	Permission   string       `yaml:"permission"`
	Stackable    *bool        `yaml:"stackable"`
	MaxStackSize *int         `yaml:"max-stack-size"`
	DropOnDeath  *bool        `yaml:"drop-on-death"`
	Mechanics    rawMechanics `yaml:"mechanics"`

	// Presentation keys the engine ignores.
	CustomModelData int            `yaml:"custom-model-data"`
	Unbreakable     bool           `yaml:"unbreakable"`
	Glowing         bool           `yaml:"glowing"`
	Enchantments    map[string]int `yaml:"enchantments"`
}

var (
	itemKeys = []string{
		"display-name", "material", "lore", "cooldown", "consumable", "permission",
		"stackable", "max-stack-size", "drop-on-death", "mechanics",
		"custom-model-data", "unbreakable", "glowing", "enchantments",
	}
	triggerKeys = []string{"conditions", "actions"}
)

// rawMechanics keeps each trigger entry separately so one bad trigger does
// not take its siblings down with it.
type rawMechanics []rawMechanic

type rawMechanic struct {
	Key     string
	Trigger rawTrigger
	Err     error
}

type rawTrigger struct {
	Conditions []string   `yaml:"conditions"`
	Actions    rawActions `yaml:"actions"`
}

// rawActions accepts either a sequence of action maps or a map of named
// action maps. Both keep declaration order.
type rawActions []rawAction

type rawAction struct {
	Name string // map key in the named form
	Body map[string]any
	Err  error
}

func (m *rawMechanics) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mechanics must be a map", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		entry := rawMechanic{Key: n.Content[i].Value}
		entry.Err = decodeStrict(n.Content[i+1], &entry.Trigger, triggerKeys)
		*m = append(*m, entry)
	}
	return nil
}

func (a *rawActions) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			*a = append(*a, decodeAction("", item))
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			*a = append(*a, decodeAction(n.Content[i].Value, n.Content[i+1]))
		}
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		fallthrough
	default:
		return fmt.Errorf("line %d: actions must be a list or a map", n.Line)
	}
	return nil
}

func decodeAction(name string, n *yaml.Node) rawAction {
	a := rawAction{Name: name}
	if n.Kind != yaml.MappingNode {
		a.Err = fmt.Errorf("line %d: action must be a map", n.Line)
		return a
	}
	a.Err = n.Decode(&a.Body)
	return a
}

// decodeStrict decodes n into out after rejecting keys not in allowed.
// yaml.Node.Decode has no KnownFields mode; checking keys up front keeps
// the original line numbers in error messages.
func decodeStrict(n *yaml.Node, out any, allowed []string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a map", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: field %s not found", key.Line, key.Value)
		}
	}
	return n.Decode(out)
}
