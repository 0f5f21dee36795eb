package ir

// ItemDefinition is a custom item as declared in an item file.
type ItemDefinition struct {
	ID              string
	DisplayName     string
	Material        string
	Lore            []string
	CooldownSeconds int
	Consumable      bool
	Permission      string
	Stackable       bool
	MaxStackSize    int
	DropOnDeath     bool

	// Mechanics maps each declared trigger to its ordered actions.
	// A trigger is either absent or maps to at least one action.
	Mechanics map[TriggerKind][]ActionSpec
}

// HasTrigger reports whether the definition declares actions for k.
func (d ItemDefinition) HasTrigger(k TriggerKind) bool {
	return len(d.Mechanics[k]) > 0
}

// Triggers returns the declared triggers in taxonomy order.
func (d ItemDefinition) Triggers() []TriggerKind {
	var out []TriggerKind
	for _, info := range triggerTable {
		if d.HasTrigger(info.Kind) {
			out = append(out, info.Kind)
		}
	}
	return out
}
