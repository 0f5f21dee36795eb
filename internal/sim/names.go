package sim

import "strings"

// Names the simulated host recognizes. Lookups are case-insensitive.
var (
	KnownSounds = nameSet(
		"ENTITY_PLAYER_LEVELUP", "ENTITY_BLAZE_SHOOT", "ENTITY_ENDERMAN_TELEPORT",
		"ENTITY_GENERIC_EXPLODE", "ENTITY_EXPERIENCE_ORB_PICKUP", "BLOCK_NOTE_BLOCK_PLING",
		"ITEM_TOTEM_USE",
	)
	KnownParticles = nameSet(
		"FLAME", "SPELL_WITCH", "HEART", "SMOKE_NORMAL", "PORTAL", "CRIT", "VILLAGER_HAPPY",
	)
	KnownEffects = nameSet(
		"SPEED", "SLOW", "FAST_DIGGING", "INCREASE_DAMAGE", "HEAL", "JUMP", "REGENERATION",
		"DAMAGE_RESISTANCE", "FIRE_RESISTANCE", "WATER_BREATHING", "INVISIBILITY",
		"NIGHT_VISION", "HUNGER", "WEAKNESS", "POISON", "WITHER", "ABSORPTION", "GLOWING",
		"LEVITATION", "SLOW_FALLING",
	)
)

type names map[string]struct{}

func nameSet(ns ...string) names {
	s := make(names, len(ns))
	for _, n := range ns {
		s[n] = struct{}{}
	}
	return s
}

func (s names) has(n string) bool {
	_, ok := s[strings.ToUpper(n)]
	return ok
}
