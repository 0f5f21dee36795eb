package host

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownName is returned when a sound, particle or effect name is not
// known to the host.
var ErrUnknownName = errors.New("unknown name")

// TicksPerSecond is the host's fixed tick rate.
const TicksPerSecond = 20

// Clock provides wall-clock time. Cooldowns and condition caches read it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Entity is anything in a world with an identity and a position.
type Entity interface {
	ID() string
	Name() string
	Location() Location
}

// LivingEntity is an entity with health that can be set on fire.
type LivingEntity interface {
	Entity
	Health() float64
	MaxHealth() float64
	SetFireTicks(ticks int)
}

// Effect is a timed status effect. DurationTicks < 0 means infinite.
type Effect struct {
	Name          string
	DurationTicks int
	Amplifier     int
}

// Actor is a connected player.
type Actor interface {
	LivingEntity

	Online() bool
	World() World
	Inventory() Inventory

	SetHealth(health float64)
	Food() int
	Level() int
	SetLevel(level int)

	HasPermission(node string) bool

	HasEffect(name string) bool
	AddEffect(e Effect) error
	RemoveEffect(name string) error

	Sneaking() bool
	Sprinting() bool
	Flying() bool
	InWater() bool
	OnGround() bool

	// LastDamagedAt is the zero time when the actor was never damaged.
	LastDamagedAt() time.Time

	Teleport(to Location)
	SetVelocity(v Vec3)
	PlaySound(name string, volume, pitch float64) error
	SendMessage(msg string)
}

// World is the dimension an actor is in.
type World interface {
	Name() string
	// Time is the time of day in ticks, 0 to 23999.
	Time() int64
	Storming() bool
	BiomeAt(loc Location) string
	IsSolid(x, y, z int) bool
	MaxHeight() int
	SpawnParticle(at Location, name string, count int) error
}

// Inventory exposes the parts of an actor's inventory the engine reads.
// MainHand and OffHand return nil for an empty hand.
type Inventory interface {
	MainHand() Item
	OffHand() Item
	Count(material string) int
}

// Item is a stack in an inventory. DefinitionID is empty for items that
// carry no custom-item tag.
type Item interface {
	DefinitionID() string
	Material() string
	Amount() int
	SetAmount(n int)
}

// IsEmpty reports whether it holds nothing: nil, air or a zero amount.
func IsEmpty(it Item) bool {
	if it == nil {
		return true
	}
	return it.Amount() <= 0 || it.Material() == "" || strings.EqualFold(it.Material(), "AIR")
}

// SameDefinition reports whether it is a custom item of definition id.
func SameDefinition(it Item, id string) bool {
	return !IsEmpty(it) && id != "" && it.DefinitionID() == id
}
