package action

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/messages"
)

// Built-in kinds, named as they appear in item files.
const (
	KindHealPlayer        = "heal_player"
	KindDamageBoost       = "damage_boost"
	KindApplyPotion       = "apply_potion"
	KindRemovePotion      = "remove_potion"
	KindPlaySound         = "play_sound"
	KindSpawnParticles    = "spawn_particles"
	KindSendMessage       = "send_message"
	KindTeleportForward   = "teleport_forward"
	KindLaunchPlayer      = "launch_player"
	KindConsumeExperience = "consume_experience"
	KindSetFire           = "set_fire"
)

// Fallbacks used when a host does not know the configured name.
const (
	FallbackSound    = "ENTITY_PLAYER_LEVELUP"
	FallbackParticle = "SPELL_WITCH"
)

// InfiniteDuration as an apply_potion duration never expires.
const InfiniteDuration = -1

const (
	boostEffect     = "INCREASE_DAMAGE"
	boostTicks      = 60
	particleOffsetY = 1.0
)

var builtinFactories = map[string]Factory{
	KindHealPlayer: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &HealPlayer{Base: NewBase(spec, false), Amount: spec.Params.Float("value", 1)}, nil
	},
	KindDamageBoost: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &DamageBoost{Base: NewBase(spec, false), Amount: spec.Params.Float("value", 1)}, nil
	},
	KindApplyPotion: func(spec ir.ActionSpec) (mechanic.Action, error) {
		a := &ApplyPotion{
			Base:            NewBase(spec, false),
			Effect:          strings.ToUpper(spec.Params.String("effect", "SPEED")),
			DurationSeconds: spec.Params.Int("duration", 60),
			Amplifier:       spec.Params.Int("amplifier", 0),
		}
		if a.DurationSeconds < InfiniteDuration {
			return nil, fmt.Errorf("duration %d: must be -1 or non-negative", a.DurationSeconds)
		}
		return a, nil
	},
	KindRemovePotion: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &RemovePotion{Base: NewBase(spec, false), Effect: strings.ToUpper(spec.Params.String("effect", "SPEED"))}, nil
	},
	KindPlaySound: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &PlaySound{
			Base:   NewBase(spec, false),
			Sound:  strings.ToUpper(spec.Params.String("sound", FallbackSound)),
			Volume: spec.Params.Float("volume", 1),
			Pitch:  spec.Params.Float("pitch", 1),
		}, nil
	},
	KindSpawnParticles: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &SpawnParticles{
			Base:     NewBase(spec, false),
			Particle: strings.ToUpper(spec.Params.String("particle", "FLAME")),
			Count:    spec.Params.Int("amount", 10),
		}, nil
	},
	KindSendMessage: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &SendMessage{Base: NewBase(spec, false), Message: spec.Params.String("message", "")}, nil
	},
	KindTeleportForward: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &TeleportForward{Base: NewBase(spec, false), Distance: spec.Params.Float("distance", 5)}, nil
	},
	KindLaunchPlayer: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &LaunchPlayer{Base: NewBase(spec, false), Power: spec.Params.Float("power", 1)}, nil
	},
	KindConsumeExperience: func(spec ir.ActionSpec) (mechanic.Action, error) {
		levels := spec.Params.Int("levels", 1)
		if levels < 0 {
			return nil, fmt.Errorf("levels %d: must be non-negative", levels)
		}
		return &ConsumeExperience{Base: NewBase(spec, false), Levels: levels}, nil
	},
	KindSetFire: func(spec ir.ActionSpec) (mechanic.Action, error) {
		return &SetFire{Base: NewBase(spec, true), DurationSeconds: spec.Params.Int("duration", 5)}, nil
	},
}

// HealPlayer restores health up to the actor's maximum.
type HealPlayer struct {
	Base
	Amount float64
}

// Execute heals the actor and tells them by how much.
func (a *HealPlayer) Execute(ctx *mechanic.Context) bool {
	actor := ctx.Actor()
	actor.SetHealth(math.Min(actor.Health()+a.Amount, actor.MaxHealth()))
	actor.SendMessage(messages.Colorize(messages.Substitute(
		"&aYou have been healed by {amount} points!",
		"amount", strconv.FormatFloat(a.Amount, 'g', -1, 64))))
	return true
}

// DamageBoost grants a short strength effect scaled by Amount.
type DamageBoost struct {
	Base
	Amount float64
}

// Execute applies the strength effect to the actor.
func (a *DamageBoost) Execute(ctx *mechanic.Context) bool {
	err := ctx.Actor().AddEffect(host.Effect{
		Name:          boostEffect,
		DurationTicks: boostTicks,
		Amplifier:     int(a.Amount / 3),
	})
	return err == nil
}

// ApplyPotion applies a status effect for DurationSeconds, or forever
// when DurationSeconds is InfiniteDuration.
type ApplyPotion struct {
	Base
	Effect          string
	DurationSeconds int
	Amplifier       int
}

// Execute applies the effect. It fails when the host rejects the effect name.
func (a *ApplyPotion) Execute(ctx *mechanic.Context) bool {
	ticks := a.DurationSeconds * host.TicksPerSecond
	if a.DurationSeconds == InfiniteDuration {
		ticks = math.MaxInt32
	}
	err := ctx.Actor().AddEffect(host.Effect{Name: a.Effect, DurationTicks: ticks, Amplifier: a.Amplifier})
	if err != nil {
		slog.Debug("apply_potion failed", "effect", a.Effect, "error", err)
		return false
	}
	return true
}

// RemovePotion clears a status effect.
type RemovePotion struct {
	Base
	Effect string
}

// Execute removes the effect from the actor.
func (a *RemovePotion) Execute(ctx *mechanic.Context) bool {
	return ctx.Actor().RemoveEffect(a.Effect) == nil
}

// PlaySound plays a sound to the actor, falling back to FallbackSound
// when the host does not know Sound.
type PlaySound struct {
	Base
	Sound  string
	Volume float64
	Pitch  float64
}

// Execute plays the sound at the actor.
func (a *PlaySound) Execute(ctx *mechanic.Context) bool {
	actor := ctx.Actor()
	err := actor.PlaySound(a.Sound, a.Volume, a.Pitch)
	if errors.Is(err, host.ErrUnknownName) {
		err = actor.PlaySound(FallbackSound, a.Volume, a.Pitch)
	}
	return err == nil
}

// SpawnParticles spawns particles one block above the origin, falling
// back to FallbackParticle when the host does not know Particle.
type SpawnParticles struct {
	Base
	Particle string
	Count    int
}

// Execute spawns the particles in the actor's world.
func (a *SpawnParticles) Execute(ctx *mechanic.Context) bool {
	world := ctx.Actor().World()
	at := ctx.Actor().Location().Add(host.Vec3{Y: particleOffsetY})
	err := world.SpawnParticle(at, a.Particle, a.Count)
	if errors.Is(err, host.ErrUnknownName) {
		err = world.SpawnParticle(at, FallbackParticle, a.Count)
	}
	return err == nil
}

// SendMessage sends a colourized chat line to the actor.
type SendMessage struct {
	Base
	Message string
}

// Execute sends the message.
func (a *SendMessage) Execute(ctx *mechanic.Context) bool {
	ctx.Actor().SendMessage(messages.Colorize(a.Message))
	return true
}

// TeleportForward moves the actor Distance blocks along its facing, then
// steps up from one block above the destination until the block is free
// or the world's build height is reached.
type TeleportForward struct {
	Base
	Distance float64
}

// Execute teleports the actor. It always succeeds.
func (a *TeleportForward) Execute(ctx *mechanic.Context) bool {
	actor := ctx.Actor()
	from := actor.Location()
	dest := from.Add(from.Direction().Normalize().Scale(a.Distance))
	dest.Y++

	world := actor.World()
	for {
		x, y, z := dest.Block()
		if !world.IsSolid(x, y, z) || y >= world.MaxHeight() {
			break
		}
		dest.Y++
	}
	actor.Teleport(dest)
	return true
}

// LaunchPlayer sets an upward velocity of Power.
type LaunchPlayer struct {
	Base
	Power float64
}

// Execute replaces the actor's velocity.
func (a *LaunchPlayer) Execute(ctx *mechanic.Context) bool {
	ctx.Actor().SetVelocity(host.Vec3{Y: a.Power})
	return true
}

// ConsumeExperience removes Levels experience levels. It fails without
// side effects when the actor has fewer levels.
type ConsumeExperience struct {
	Base
	Levels int
}

// Execute takes the levels from the actor.
func (a *ConsumeExperience) Execute(ctx *mechanic.Context) bool {
	actor := ctx.Actor()
	if actor.Level() < a.Levels {
		return false
	}
	actor.SetLevel(actor.Level() - a.Levels)
	return true
}

// SetFire ignites the target for DurationSeconds. It needs a living
// target.
type SetFire struct {
	Base
	DurationSeconds int
}

// CanExecute also requires the target to be a living entity.
func (a *SetFire) CanExecute(ctx *mechanic.Context) bool {
	if !a.Base.CanExecute(ctx) {
		return false
	}
	_, ok := ctx.TargetLiving()
	return ok
}

// Execute sets the target's fire ticks.
func (a *SetFire) Execute(ctx *mechanic.Context) bool {
	living, ok := ctx.TargetLiving()
	if !ok {
		return false
	}
	living.SetFireTicks(a.DurationSeconds * host.TicksPerSecond)
	return true
}
