package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mechanics/internal/ir"
)

// Scenario is a conformance test: item files, a starting world and a flow
// of host events, followed by assertions over the resulting trace.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Items are definition files, relative to the scenario file.
	Items []string `yaml:"items"`

	Actors     []ActorSpec `yaml:"actors"`
	Mobs       []MobSpec   `yaml:"mobs"`
	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// ActorSpec is an actor present when the scenario starts.
type ActorSpec struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	World       string     `yaml:"world"`
	Health      *float64   `yaml:"health"`
	Level       *int       `yaml:"level"`
	Permissions []string   `yaml:"permissions"`
	States      []string   `yaml:"states"`
	MainHand    *StackSpec `yaml:"main_hand"`
	OffHand     *StackSpec `yaml:"off_hand"`
}

// StackSpec is an item stack placed in a hand.
type StackSpec struct {
	Item     string `yaml:"item"`
	Amount   int    `yaml:"amount"`
	Material string `yaml:"material"`
}

// MobSpec is a non-actor entity that can be targeted.
type MobSpec struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Health float64 `yaml:"health"`
}

// FlowStep is one host event. Exactly one field is set.
type FlowStep struct {
	Fire    *FireStep   `yaml:"fire"`
	Advance int         `yaml:"advance"`
	Set     *ActorPatch `yaml:"set"`
	Equip   *EquipStep  `yaml:"equip"`
	Unequip string      `yaml:"unequip"`
	Cleanup string      `yaml:"cleanup"`
}

// Kind names the field set on s, or "" when none or several are.
func (s FlowStep) Kind() string {
	var kinds []string
	if s.Fire != nil {
		kinds = append(kinds, "fire")
	}
	if s.Advance != 0 {
		kinds = append(kinds, "advance")
	}
	if s.Set != nil {
		kinds = append(kinds, "set")
	}
	if s.Equip != nil {
		kinds = append(kinds, "equip")
	}
	if s.Unequip != "" {
		kinds = append(kinds, "unequip")
	}
	if s.Cleanup != "" {
		kinds = append(kinds, "cleanup")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// FireStep delivers a trigger for the item in one of the actor's hands.
type FireStep struct {
	Actor   string `yaml:"actor"`
	Trigger string `yaml:"trigger"`
	// Hand is "main" (default) or "off".
	Hand   string `yaml:"hand"`
	Target string `yaml:"target"`
}

// ActorPatch changes an actor between firings.
type ActorPatch struct {
	Actor  string          `yaml:"actor"`
	Health *float64        `yaml:"health"`
	Level  *int            `yaml:"level"`
	Online *bool           `yaml:"online"`
	States map[string]bool `yaml:"states"`
	Grant  []string        `yaml:"grant"`
	Revoke []string        `yaml:"revoke"`
}

// EquipStep puts a stack in the actor's main hand and starts monitoring.
type EquipStep struct {
	Actor string `yaml:"actor"`
	StackSpec `yaml:",inline"`
}

// Assertion types.
const (
	AssertEventContains = "event_contains"
	AssertEventCount    = "event_count"
	AssertEventOrder    = "event_order"
	AssertCooldown      = "cooldown"
	AssertJournalCount  = "journal_count"
	AssertActorState    = "actor_state"
	AssertMonitorCount  = "monitor_count"
)

// Assertion checks the outcome of a scenario. Which fields apply depends
// on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// event_contains, event_order
	Event  *EventMatch  `yaml:"event"`
	Events []EventMatch `yaml:"events"`

	// event_count, journal_count, monitor_count
	Kind  string `yaml:"kind"`
	Count *int   `yaml:"count"`

	// cooldown, actor_state, event_count, journal_count
	Actor   string `yaml:"actor"`
	Item    string `yaml:"item"`
	Trigger string `yaml:"trigger"`
	Active  *bool  `yaml:"active"`

	// actor_state
	Health *float64 `yaml:"health"`
	Level  *int     `yaml:"level"`
}

// EventMatch selects recorded host events. Empty fields match anything.
type EventMatch struct {
	Subject string `yaml:"subject"`
	Kind    string `yaml:"kind"`
	Detail  string `yaml:"detail"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	s.dir = filepath.Dir(path)

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// ItemPaths returns the scenario's item files resolved against the
// directory it was loaded from.
func (s *Scenario) ItemPaths() []string {
	out := make([]string, len(s.Items))
	for i, p := range s.Items {
		if filepath.IsAbs(p) || s.dir == "" {
			out[i] = p
		} else {
			out[i] = filepath.Join(s.dir, p)
		}
	}
	return out
}

func validateScenario(s *Scenario) error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(s.Items) == 0 {
		errs = append(errs, errors.New("at least one items file is required"))
	}
	if len(s.Flow) == 0 {
		errs = append(errs, errors.New("flow must not be empty"))
	}

	actors := make(map[string]bool, len(s.Actors))
	for i, a := range s.Actors {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("actors[%d]: id is required", i))
			continue
		}
		if actors[a.ID] {
			errs = append(errs, fmt.Errorf("actors[%d]: duplicate id %q", i, a.ID))
		}
		actors[a.ID] = true
		for _, h := range []*StackSpec{a.MainHand, a.OffHand} {
			if h != nil && h.Item == "" {
				errs = append(errs, fmt.Errorf("actors[%d]: hand item is required", i))
			}
		}
	}
	mobs := make(map[string]bool, len(s.Mobs))
	for i, m := range s.Mobs {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("mobs[%d]: id is required", i))
			continue
		}
		mobs[m.ID] = true
	}

	needActor := func(i int, id string) {
		if !actors[id] {
			errs = append(errs, fmt.Errorf("flow[%d]: unknown actor %q", i, id))
		}
	}
	for i, step := range s.Flow {
		switch step.Kind() {
		case "fire":
			f := step.Fire
			needActor(i, f.Actor)
			if _, ok := ir.LookupTrigger(f.Trigger); !ok {
				errs = append(errs, fmt.Errorf("flow[%d]: unknown trigger %q", i, f.Trigger))
			}
			if f.Hand != "" && f.Hand != "main" && f.Hand != "off" {
				errs = append(errs, fmt.Errorf("flow[%d]: hand must be main or off, got %q", i, f.Hand))
			}
			if f.Target != "" && !mobs[f.Target] && !actors[f.Target] {
				errs = append(errs, fmt.Errorf("flow[%d]: unknown target %q", i, f.Target))
			}
		case "advance":
			if step.Advance < 0 {
				errs = append(errs, fmt.Errorf("flow[%d]: advance must be positive", i))
			}
		case "set":
			needActor(i, step.Set.Actor)
		case "equip":
			needActor(i, step.Equip.Actor)
			if step.Equip.Item == "" {
				errs = append(errs, fmt.Errorf("flow[%d]: equip item is required", i))
			}
		case "unequip":
			needActor(i, step.Unequip)
		case "cleanup":
			needActor(i, step.Cleanup)
		default:
			errs = append(errs, fmt.Errorf("flow[%d]: exactly one of fire, advance, set, equip, unequip, cleanup is required", i))
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			errs = append(errs, fmt.Errorf("assertions[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertEventContains:
		if a.Event == nil {
			return errors.New("event_contains requires event")
		}
	case AssertEventOrder:
		if len(a.Events) < 2 {
			return errors.New("event_order requires at least two events")
		}
	case AssertEventCount:
		if a.Kind == "" || a.Count == nil {
			return errors.New("event_count requires kind and count")
		}
	case AssertJournalCount, AssertMonitorCount:
		if a.Count == nil {
			return fmt.Errorf("%s requires count", a.Type)
		}
	case AssertCooldown:
		if a.Actor == "" || a.Item == "" || a.Trigger == "" || a.Active == nil {
			return errors.New("cooldown requires actor, item, trigger and active")
		}
		if _, ok := ir.LookupTrigger(a.Trigger); !ok {
			return fmt.Errorf("unknown trigger %q", a.Trigger)
		}
	case AssertActorState:
		if a.Actor == "" {
			return errors.New("actor_state requires actor")
		}
		if a.Health == nil && a.Level == nil {
			return errors.New("actor_state requires health or level")
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
