package ir

import "strings"

// TriggerKind names a moment at which an item's mechanics may activate.
// The value is the trigger's config key.
type TriggerKind string

const (
	TriggerRightClick      TriggerKind = "right_click"
	TriggerLeftClick       TriggerKind = "left_click"
	TriggerShiftRightClick TriggerKind = "shift_right_click"
	TriggerShiftLeftClick  TriggerKind = "shift_left_click"

	TriggerAttackEntity TriggerKind = "attack_entity"
	TriggerKillEntity   TriggerKind = "kill_entity"
	TriggerDamageTaken  TriggerKind = "damage_taken"
	TriggerCriticalHit  TriggerKind = "critical_hit"

	TriggerConsume TriggerKind = "consume"
	TriggerEat     TriggerKind = "eat"
	TriggerDrink   TriggerKind = "drink"

	TriggerSprint TriggerKind = "sprint"
	TriggerSneak  TriggerKind = "sneak"
	TriggerJump   TriggerKind = "jump"
	TriggerFall   TriggerKind = "fall"

	TriggerEnterWater      TriggerKind = "enter_water"
	TriggerExitWater       TriggerKind = "exit_water"
	TriggerLightningStruck TriggerKind = "lightning_struck"

	TriggerOnEquip   TriggerKind = "on_equip"
	TriggerOnUnequip TriggerKind = "on_unequip"
	TriggerWhileHeld TriggerKind = "while_held"
	TriggerPeriodic  TriggerKind = "periodic"

	TriggerShootBow  TriggerKind = "shoot_bow"
	TriggerThrowItem TriggerKind = "throw_item"
	TriggerHitTarget TriggerKind = "hit_target"

	TriggerBreakBlock    TriggerKind = "break_block"
	TriggerPlaceBlock    TriggerKind = "place_block"
	TriggerInteractBlock TriggerKind = "interact_block"
	TriggerDeath         TriggerKind = "death"
	TriggerRespawn       TriggerKind = "respawn"

	TriggerLowHealth  TriggerKind = "low_health"
	TriggerFullHealth TriggerKind = "full_health"
	TriggerLowHunger  TriggerKind = "low_hunger"

	TriggerChatMessage TriggerKind = "chat_message"
	TriggerPlayerJoin  TriggerKind = "player_join"
	TriggerPlayerQuit  TriggerKind = "player_quit"
)

// TriggerInfo is the static metadata attached to a trigger kind.
type TriggerInfo struct {
	Kind           TriggerKind
	DisplayName    string
	RequiresInHand bool
	Periodic       bool
}

// triggerTable lists every trigger in declaration order.
var triggerTable = []TriggerInfo{
	{Kind: TriggerRightClick, DisplayName: "Right click", RequiresInHand: true},
	{Kind: TriggerLeftClick, DisplayName: "Left click", RequiresInHand: true},
	{Kind: TriggerShiftRightClick, DisplayName: "Shift + right click", RequiresInHand: true},
	{Kind: TriggerShiftLeftClick, DisplayName: "Shift + left click", RequiresInHand: true},

	{Kind: TriggerAttackEntity, DisplayName: "Attack entity", RequiresInHand: true},
	{Kind: TriggerKillEntity, DisplayName: "Kill entity"},
	{Kind: TriggerDamageTaken, DisplayName: "Take damage"},
	{Kind: TriggerCriticalHit, DisplayName: "Critical hit"},

	{Kind: TriggerConsume, DisplayName: "Consume item"},
	{Kind: TriggerEat, DisplayName: "Eat"},
	{Kind: TriggerDrink, DisplayName: "Drink"},

	{Kind: TriggerSprint, DisplayName: "Sprint"},
	{Kind: TriggerSneak, DisplayName: "Sneak"},
	{Kind: TriggerJump, DisplayName: "Jump"},
	{Kind: TriggerFall, DisplayName: "Fall"},

	{Kind: TriggerEnterWater, DisplayName: "Enter water"},
	{Kind: TriggerExitWater, DisplayName: "Exit water"},
	{Kind: TriggerLightningStruck, DisplayName: "Struck by lightning"},

	{Kind: TriggerOnEquip, DisplayName: "On equip"},
	{Kind: TriggerOnUnequip, DisplayName: "On unequip"},
	{Kind: TriggerWhileHeld, DisplayName: "While held", Periodic: true},
	{Kind: TriggerPeriodic, DisplayName: "Periodically", Periodic: true},

	{Kind: TriggerShootBow, DisplayName: "Shoot bow", RequiresInHand: true},
	{Kind: TriggerThrowItem, DisplayName: "Throw item", RequiresInHand: true},
	{Kind: TriggerHitTarget, DisplayName: "Hit target"},

	{Kind: TriggerBreakBlock, DisplayName: "Break block", RequiresInHand: true},
	{Kind: TriggerPlaceBlock, DisplayName: "Place block", RequiresInHand: true},
	{Kind: TriggerInteractBlock, DisplayName: "Interact with block"},
	{Kind: TriggerDeath, DisplayName: "On death"},
	{Kind: TriggerRespawn, DisplayName: "On respawn"},

	{Kind: TriggerLowHealth, DisplayName: "Low health"},
	{Kind: TriggerFullHealth, DisplayName: "Full health"},
	{Kind: TriggerLowHunger, DisplayName: "Low hunger"},

	{Kind: TriggerChatMessage, DisplayName: "Chat message"},
	{Kind: TriggerPlayerJoin, DisplayName: "Player joins"},
	{Kind: TriggerPlayerQuit, DisplayName: "Player quits"},
}

var triggerIndex = func() map[TriggerKind]int {
	idx := make(map[TriggerKind]int, len(triggerTable))
	for i, info := range triggerTable {
		if _, dup := idx[info.Kind]; dup {
			panic("ir: duplicate trigger config key " + string(info.Kind))
		}
		idx[info.Kind] = i
	}
	return idx
}()

// LookupTrigger resolves a config key (case-insensitive) to a trigger kind.
func LookupTrigger(configKey string) (TriggerKind, bool) {
	kind := TriggerKind(strings.ToLower(strings.TrimSpace(configKey)))
	if _, ok := triggerIndex[kind]; !ok {
		return "", false
	}
	return kind, true
}

// Triggers returns the metadata of every trigger in declaration order.
func Triggers() []TriggerInfo {
	out := make([]TriggerInfo, len(triggerTable))
	copy(out, triggerTable)
	return out
}

// Info returns the static metadata for k.
func (k TriggerKind) Info() (TriggerInfo, bool) {
	i, ok := triggerIndex[k]
	if !ok {
		return TriggerInfo{}, false
	}
	return triggerTable[i], true
}

// Valid reports whether k is part of the taxonomy.
func (k TriggerKind) Valid() bool {
	_, ok := triggerIndex[k]
	return ok
}

// ConfigKey returns the key used in item files.
func (k TriggerKind) ConfigKey() string { return string(k) }

// Name returns the upper-case constant form, e.g. RIGHT_CLICK.
// Cooldown keys use this form.
func (k TriggerKind) Name() string { return strings.ToUpper(string(k)) }

// DisplayName returns the human-readable name, or the config key for
// unknown kinds.
func (k TriggerKind) DisplayName() string {
	if info, ok := k.Info(); ok {
		return info.DisplayName
	}
	return string(k)
}

// RequiresInHand reports whether the item must be in the actor's active hand.
func (k TriggerKind) RequiresInHand() bool {
	info, _ := k.Info()
	return info.RequiresInHand
}

// IsPeriodic reports whether the trigger is driven by the periodic monitor.
func (k TriggerKind) IsPeriodic() bool {
	info, _ := k.Info()
	return info.Periodic
}
