package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mechanics/internal/action"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

// Defaults applied to item fields the file leaves out.
const (
	DefaultMaterial     = "STONE"
	DefaultMaxStackSize = 64
)

// MaxDelayTicks is the longest delay an action may declare.
const MaxDelayTicks = math.MaxInt32

// Result is the outcome of loading one file.
type Result struct {
	Source string

	// Definitions holds the items that loaded, in file order.
	Definitions []*mechanic.Definition

	// Errors holds every skipped or suspicious entry, in file order.
	Errors []*LoadError
}

// Register puts every loaded definition into reg and returns the count.
func (r *Result) Register(reg *mechanic.Registry) int {
	for _, def := range r.Definitions {
		reg.Put(def)
	}
	return len(r.Definitions)
}

// Lookup returns the loaded definition with id.
func (r *Result) Lookup(id string) (*mechanic.Definition, bool) {
	for _, def := range r.Definitions {
		if def.ID() == id {
			return def, true
		}
	}
	return nil, false
}

// Loader compiles item files against an action catalog.
type Loader struct {
	catalog        *action.Catalog
	knownCondition func(typ string) bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithConditionTypes enables UNKNOWN_CONDITION_TYPE warnings for condition
// types known reports false. Typically condition.Evaluator.Known.
func WithConditionTypes(known func(typ string) bool) Option {
	return func(l *Loader) { l.knownCondition = known }
}

// New creates a loader. A nil catalog means action.NewCatalog().
func New(catalog *action.Catalog, opts ...Option) *Loader {
	if catalog == nil {
		catalog = action.NewCatalog()
	}
	l := &Loader{catalog: catalog}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads path and dispatches on its extension.
func (l *Loader) LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.LoadYAML(data, path)
	case ".cue":
		return l.LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("item file %s: unsupported extension (want .yaml, .yml or .cue)", path)
	}
}

// LoadYAML loads an item file in YAML form. source names it in messages.
func (l *Loader) LoadYAML(data []byte, source string) (*Result, error) {
	return l.load(data, source, func(_ string, key *yaml.Node) string {
		return fmt.Sprintf("%s:%d:%d", source, key.Line, key.Column)
	})
}

func (l *Loader) load(data []byte, source string, pos func(id string, key *yaml.Node) string) (*Result, error) {
	res := &Result{Source: source}

	var f rawFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			slog.Info("item file is empty", "source", source)
			return res, nil
		}
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	items := &f.Items
	switch {
	case items.Kind == 0 || (items.Kind == yaml.ScalarNode && items.Tag == "!!null"):
		slog.Info("no items defined", "source", source)
		return res, nil
	case items.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("parse %s: line %d: items must be a map keyed by item id", source, items.Line)
	}

	for i := 0; i+1 < len(items.Content); i += 2 {
		key, body := items.Content[i], items.Content[i+1]
		id := key.Value
		b := &itemBuilder{loader: l, id: id, pos: pos(id, key)}

		var raw rawItem
		if err := decodeStrict(body, &raw, itemKeys); err != nil {
			b.report(CodeDefinitionMalformed, "", err.Error())
			res.Errors = append(res.Errors, b.errs...)
			continue
		}
		def := b.build(raw)
		res.Errors = append(res.Errors, b.errs...)
		if def != nil {
			res.Definitions = append(res.Definitions, def)
		}
	}

	slog.Info("items loaded",
		"source", source,
		"items", len(res.Definitions),
		"problems", len(res.Errors),
	)
	return res, nil
}

// itemBuilder compiles one item and collects its problems.
type itemBuilder struct {
	loader *Loader
	id     string
	pos    string
	errs   []*LoadError
}

func (b *itemBuilder) report(code ErrorCode, path, msg string) {
	e := &LoadError{Code: code, Item: b.id, Path: path, Pos: b.pos, Message: msg}
	b.errs = append(b.errs, e)
	slog.Warn("item definition problem",
		"code", string(code),
		"item", b.id,
		"path", path,
		"pos", b.pos,
		"error", msg,
	)
}

func (b *itemBuilder) build(raw rawItem) *mechanic.Definition {
	item := ir.ItemDefinition{
		ID:              b.id,
		DisplayName:     raw.DisplayName,
		Material:        strings.ToUpper(strings.TrimSpace(raw.Material)),
		Lore:            raw.Lore,
		CooldownSeconds: max(raw.Cooldown, 0),
		Consumable:      raw.Consumable,
		Permission:      strings.TrimSpace(raw.Permission),
		Stackable:       deref(raw.Stackable, true),
		MaxStackSize:    deref(raw.MaxStackSize, DefaultMaxStackSize),
		DropOnDeath:     deref(raw.DropOnDeath, true),
		Mechanics:       make(map[ir.TriggerKind][]ir.ActionSpec),
	}
	if item.DisplayName == "" {
		item.DisplayName = b.id
	}
	if item.Material == "" {
		item.Material = DefaultMaterial
	}

	triggers := make(map[ir.TriggerKind][]mechanic.Action)
	for _, m := range raw.Mechanics {
		path := "mechanics." + m.Key
		kind, ok := ir.LookupTrigger(m.Key)
		if !ok {
			b.report(CodeUnknownTrigger, path, fmt.Sprintf("unknown trigger %q", m.Key))
			continue
		}
		if m.Err != nil {
			b.report(CodeDefinitionMalformed, path, m.Err.Error())
			continue
		}
		if _, dup := item.Mechanics[kind]; dup {
			b.report(CodeDefinitionMalformed, path, fmt.Sprintf("trigger %s declared twice", kind.Name()))
			continue
		}

		conds, err := b.conditions(path+".conditions", m.Trigger.Conditions)
		if err != nil {
			b.report(CodeDefinitionMalformed, path+".conditions", err.Error())
			continue
		}

		var specs []ir.ActionSpec
		var actions []mechanic.Action
		for i, ra := range m.Trigger.Actions {
			apath := fmt.Sprintf("%s.actions[%d]", path, i)
			if ra.Name != "" {
				apath = path + ".actions." + ra.Name
			}
			spec, a, ok := b.action(apath, ra, conds)
			if !ok {
				continue
			}
			specs = append(specs, spec)
			actions = append(actions, a)
		}
		if len(actions) == 0 {
			slog.Debug("trigger has no usable actions", "item", b.id, "trigger", kind.Name())
			continue
		}
		item.Mechanics[kind] = specs
		triggers[kind] = actions
		slog.Debug("trigger loaded", "item", b.id, "trigger", kind.Name(), "actions", len(actions))
	}

	hash, err := ir.DefinitionHash(item)
	if err != nil {
		b.report(CodeDefinitionMalformed, "", err.Error())
		return nil
	}
	return &mechanic.Definition{Item: item, Hash: hash, Triggers: triggers}
}

// action builds and compiles one action entry. Trigger-level conditions
// come first, followed by the action's own.
func (b *itemBuilder) action(path string, ra rawAction, inherited []ir.Condition) (ir.ActionSpec, mechanic.Action, bool) {
	if ra.Err != nil {
		b.report(CodeDefinitionMalformed, path, ra.Err.Error())
		return ir.ActionSpec{}, nil, false
	}

	spec := ir.ActionSpec{Params: ir.Params{}}
	for k, v := range ra.Body {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				b.report(CodeDefinitionMalformed, path, "action type must be a non-empty string")
				return ir.ActionSpec{}, nil, false
			}
			spec.Kind = strings.ToLower(strings.TrimSpace(s))
		case "delay":
			f, ok := ir.ToFloat(v)
			if !ok {
				b.report(CodeDefinitionMalformed, path, fmt.Sprintf("delay %v is not a number", v))
				return ir.ActionSpec{}, nil, false
			}
			if f > MaxDelayTicks {
				b.report(CodeDefinitionMalformed, path, fmt.Sprintf("delay %v exceeds %d ticks", v, MaxDelayTicks))
				return ir.ActionSpec{}, nil, false
			}
			spec.DelayTicks = max(int(f), 0)
		case "conditions":
			entries, err := stringList(v)
			if err != nil {
				b.report(CodeDefinitionMalformed, path+".conditions", err.Error())
				return ir.ActionSpec{}, nil, false
			}
			own, err := b.conditions(path+".conditions", entries)
			if err != nil {
				b.report(CodeDefinitionMalformed, path+".conditions", err.Error())
				return ir.ActionSpec{}, nil, false
			}
			spec.Conditions = append(spec.Conditions, own...)
		default:
			spec.Params[k] = v
		}
	}
	if spec.Kind == "" {
		b.report(CodeDefinitionMalformed, path, "action has no type")
		return ir.ActionSpec{}, nil, false
	}
	spec.Conditions = append(slices.Clone(inherited), spec.Conditions...)

	a, err := b.loader.catalog.Compile(spec)
	if errors.Is(err, action.ErrUnknownKind) {
		b.report(CodeUnknownActionKind, path, fmt.Sprintf("unknown action type %q", spec.Kind))
		return ir.ActionSpec{}, nil, false
	}
	if err != nil {
		b.report(CodeDefinitionMalformed, path, err.Error())
		return ir.ActionSpec{}, nil, false
	}
	return spec, a, true
}

// conditions parses condition strings. A malformed entry fails the list;
// an unknown type is reported but kept, so the guarded entry stays closed.
func (b *itemBuilder) conditions(path string, entries []string) ([]ir.Condition, error) {
	out := make([]ir.Condition, 0, len(entries))
	for _, s := range entries {
		c, err := ir.ParseCondition(s)
		if err != nil {
			return nil, err
		}
		if b.loader.knownCondition != nil && !b.loader.knownCondition(c.Type()) {
			b.report(CodeUnknownConditionType, path, fmt.Sprintf("unknown condition type %q", c.Type()))
		}
		out = append(out, c)
	}
	return out, nil
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("condition %v is not a string", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("conditions must be a list of strings")
	}
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
