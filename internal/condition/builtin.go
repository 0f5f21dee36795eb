package condition

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

// CombatWindow is how recently an actor must have taken damage to count
// as in combat.
const CombatWindow = 10 * time.Second

// dayEnd is the first tick of night; day runs from tick 0.
const dayEnd = 13000

// Extension types registered by default.
const (
	TypeInWorld       = "in_world"
	TypeNotOnCooldown = "not_on_cooldown"
)

type builtin func(e *Evaluator, ctx *mechanic.Context, c ir.Condition) bool

var builtins = map[string]builtin{
	ir.CondHealthAbove: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return ctx.Actor().Health() > num(c)
	},
	ir.CondHealthBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return ctx.Actor().Health() < num(c)
	},
	ir.CondHealthPercentageAbove: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return healthPercent(ctx) > num(c)
	},
	ir.CondHealthPercentageBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return healthPercent(ctx) < num(c)
	},
	ir.CondHungerAbove: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return float64(ctx.Actor().Food()) > num(c)
	},
	ir.CondHungerBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return float64(ctx.Actor().Food()) < num(c)
	},
	ir.CondLevelAbove: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return float64(ctx.Actor().Level()) > num(c)
	},
	ir.CondLevelBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return float64(ctx.Actor().Level()) < num(c)
	},
	ir.CondHasPotionEffect: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		name := text(c)
		return name != "" && ctx.Actor().HasEffect(strings.ToUpper(name))
	},
	ir.CondMissingPotionEffect: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		name := text(c)
		return name != "" && !ctx.Actor().HasEffect(strings.ToUpper(name))
	},
	ir.CondHasItem: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		material, amount, ok := itemRequirement(c)
		return ok && ctx.Actor().Inventory().Count(material) >= amount
	},
	ir.CondMissingItem: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		material, amount, ok := itemRequirement(c)
		return ok && ctx.Actor().Inventory().Count(material) < amount
	},
	ir.CondHasPermission: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return ctx.Actor().HasPermission(text(c))
	},
	ir.CondMissingPermission: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return !ctx.Actor().HasPermission(text(c))
	},
	ir.CondIsDay: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return isDay(ctx)
	},
	ir.CondIsNight: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return !isDay(ctx)
	},
	ir.CondIsRaining: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().World().Storming()
	},
	ir.CondIsClear: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return !ctx.Actor().World().Storming()
	},
	ir.CondYAbove: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return ctx.Location().Y > num(c)
	},
	ir.CondYBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		return ctx.Location().Y < num(c)
	},
	ir.CondInBiome: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		biome := ctx.Actor().World().BiomeAt(ctx.Actor().Location())
		return text(c) != "" && strings.EqualFold(biome, text(c))
	},
	ir.CondIsSneaking: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().Sneaking()
	},
	ir.CondIsSprinting: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().Sprinting()
	},
	ir.CondIsFlying: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().Flying()
	},
	ir.CondIsInWater: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().InWater()
	},
	ir.CondIsOnGround: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		return ctx.Actor().OnGround()
	},
	ir.CondIsInCombat: func(e *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		last := ctx.Actor().LastDamagedAt()
		return !last.IsZero() && e.clock.Now().Sub(last) < CombatWindow
	},
	ir.CondTargetIsPlayer: func(_ *Evaluator, ctx *mechanic.Context, _ ir.Condition) bool {
		_, ok := ctx.TargetActor()
		return ok
	},
	ir.CondTargetHealthBelow: func(_ *Evaluator, ctx *mechanic.Context, c ir.Condition) bool {
		living, ok := ctx.TargetLiving()
		return ok && living.Health() < num(c)
	},
}

// BuiltinTypes returns the names of the built-in catalog.
func BuiltinTypes() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	return out
}

func inWorld(ctx *mechanic.Context, c ir.Condition) bool {
	name := text(c)
	return name != "" && strings.EqualFold(ctx.Actor().World().Name(), name)
}

func num(c ir.Condition) float64 {
	n, _ := c.Number()
	return n
}

func text(c ir.Condition) string {
	if s, ok := c.Text(); ok {
		return s
	}
	if _, ok := c.Number(); ok {
		return c.Operand()
	}
	return ""
}

func healthPercent(ctx *mechanic.Context) float64 {
	maxHealth := ctx.Actor().MaxHealth()
	if maxHealth <= 0 {
		return 0
	}
	return ctx.Actor().Health() / maxHealth * 100
}

func isDay(ctx *mechanic.Context) bool {
	t := ctx.Actor().World().Time()
	return t >= 0 && t < dayEnd
}

// itemRequirement reads "MATERIAL", "MATERIAL*N" or "MATERIAL:N".
// The amount defaults to 1.
func itemRequirement(c ir.Condition) (string, int, bool) {
	s := strings.TrimSpace(text(c))
	if s == "" {
		return "", 0, false
	}
	material, amount := s, 1
	if i := strings.LastIndexAny(s, "*:"); i > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil || n < 0 {
			return "", 0, false
		}
		material, amount = s[:i], n
	}
	return strings.ToUpper(strings.TrimSpace(material)), amount, true
}
