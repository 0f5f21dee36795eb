package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/mechanics/internal/host"
)

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

// Actor is a simulated player.
type Actor struct {
	mu sync.RWMutex

	id    string
	name  string
	world *World
	inv   *Inventory
	rec   *Recorder

	online      bool
	location    host.Location
	health      float64
	maxHealth   float64
	food        int
	level       int
	fireTicks   int
	velocity    host.Vec3
	permissions map[string]bool
	effects     map[string]host.Effect
	sneaking    bool
	sprinting   bool
	flying      bool
	inWater     bool
	onGround    bool
	lastDamaged time.Time
}

// NewActor creates an online actor standing on the ground of w at 0,64,0
// with 20/20 health, food 20 and level 0.
func NewActor(id, name string, w *World, rec *Recorder) *Actor {
	return &Actor{
		id:          id,
		name:        name,
		world:       w,
		inv:         &Inventory{},
		rec:         rec,
		online:      true,
		location:    host.Location{World: w.Name(), Y: float64(w.ground)},
		health:      20,
		maxHealth:   20,
		food:        20,
		onGround:    true,
		permissions: make(map[string]bool),
		effects:     make(map[string]host.Effect),
	}
}

// The methods below implement host.Actor.
func (a *Actor) ID() string   { return a.id }
func (a *Actor) Name() string { return a.name }

func (a *Actor) Location() host.Location {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.location
}

func (a *Actor) Health() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.health
}

func (a *Actor) MaxHealth() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.maxHealth
}

func (a *Actor) SetHealth(h float64) {
	a.mu.Lock()
	if h < 0 {
		h = 0
	}
	if h > a.maxHealth {
		h = a.maxHealth
	}
	a.health = h
	a.mu.Unlock()
	a.rec.record(a.id, "health", "%g", h)
}

func (a *Actor) SetFireTicks(ticks int) {
	a.mu.Lock()
	a.fireTicks = ticks
	a.mu.Unlock()
	a.rec.record(a.id, "fire", "%d ticks", ticks)
}

// FireTicks returns the remaining burn time.
func (a *Actor) FireTicks() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fireTicks
}

func (a *Actor) Online() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.online
}

func (a *Actor) SetOnline(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.online = v
}

func (a *Actor) World() host.World         { return a.world }
func (a *Actor) Inventory() host.Inventory { return a.inv }

// Hands returns the concrete inventory for equipping items.
func (a *Actor) Hands() *Inventory { return a.inv }

func (a *Actor) Food() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.food
}

func (a *Actor) SetFood(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.food = n
}

func (a *Actor) Level() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.level
}

func (a *Actor) SetLevel(level int) {
	a.mu.Lock()
	a.level = level
	a.mu.Unlock()
	a.rec.record(a.id, "level", "%d", level)
}

func (a *Actor) HasPermission(node string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.permissions[node]
}

func (a *Actor) Grant(node string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.permissions[node] = true
}

func (a *Actor) Revoke(node string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.permissions, node)
}

func (a *Actor) HasEffect(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.effects[strings.ToUpper(name)]
	return ok
}

func (a *Actor) AddEffect(e host.Effect) error {
	if !KnownEffects.has(e.Name) {
		return fmt.Errorf("effect %q: %w", e.Name, host.ErrUnknownName)
	}
	e.Name = strings.ToUpper(e.Name)
	a.mu.Lock()
	a.effects[e.Name] = e
	a.mu.Unlock()
	a.rec.record(a.id, "effect+", "%s %d ticks amp %d", e.Name, e.DurationTicks, e.Amplifier)
	return nil
}

func (a *Actor) RemoveEffect(name string) error {
	if !KnownEffects.has(name) {
		return fmt.Errorf("effect %q: %w", name, host.ErrUnknownName)
	}
	name = strings.ToUpper(name)
	a.mu.Lock()
	delete(a.effects, name)
	a.mu.Unlock()
	a.rec.record(a.id, "effect-", "%s", name)
	return nil
}

// Effect returns the active effect with the given name.
func (a *Actor) Effect(name string) (host.Effect, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.effects[strings.ToUpper(name)]
	return e, ok
}

func (a *Actor) Sneaking() bool  { return a.flag(&a.sneaking) }
func (a *Actor) Sprinting() bool { return a.flag(&a.sprinting) }
func (a *Actor) Flying() bool    { return a.flag(&a.flying) }
func (a *Actor) InWater() bool   { return a.flag(&a.inWater) }
func (a *Actor) OnGround() bool  { return a.flag(&a.onGround) }

func (a *Actor) flag(f *bool) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *f
}

// Movement flags.
const (
	StateSneaking  = "sneaking"
	StateSprinting = "sprinting"
	StateFlying    = "flying"
	StateInWater   = "in_water"
	StateOnGround  = "on_ground"
)

// SetState sets a movement flag by name.
func (a *Actor) SetState(state string, v bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch state {
	case StateSneaking:
		a.sneaking = v
	case StateSprinting:
		a.sprinting = v
	case StateFlying:
		a.flying = v
	case StateInWater:
		a.inWater = v
	case StateOnGround:
		a.onGround = v
	default:
		return fmt.Errorf("unknown actor state %q", state)
	}
	return nil
}

func (a *Actor) LastDamagedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastDamaged
}

// Damage lowers health and stamps the combat timer.
func (a *Actor) Damage(amount float64, at time.Time) {
	a.mu.Lock()
	a.lastDamaged = at
	a.mu.Unlock()
	a.SetHealth(a.Health() - amount)
}

func (a *Actor) Teleport(to host.Location) {
	a.mu.Lock()
	a.location = to
	a.mu.Unlock()
	a.rec.record(a.id, "teleport", "%.1f,%.1f,%.1f", to.X, to.Y, to.Z)
}

func (a *Actor) SetVelocity(v host.Vec3) {
	a.mu.Lock()
	a.velocity = v
	a.mu.Unlock()
	a.rec.record(a.id, "velocity", "%.2f,%.2f,%.2f", v.X, v.Y, v.Z)
}

// Velocity returns the last velocity set.
func (a *Actor) Velocity() host.Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.velocity
}

func (a *Actor) PlaySound(name string, volume, pitch float64) error {
	if !KnownSounds.has(name) {
		return fmt.Errorf("sound %q: %w", name, host.ErrUnknownName)
	}
	a.rec.record(a.id, "sound", "%s %g %g", strings.ToUpper(name), volume, pitch)
	return nil
}

func (a *Actor) SendMessage(msg string) {
	a.rec.record(a.id, "message", "%s", msg)
}

// MoveTo sets the location without recording a teleport.
func (a *Actor) MoveTo(loc host.Location) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = loc
}

// Mob is a simulated non-player living entity.
type Mob struct {
	mu        sync.RWMutex
	id        string
	name      string
	location  host.Location
	health    float64
	maxHealth float64
	fireTicks int
	rec       *Recorder
}

// NewMob creates a mob with the given health.
func NewMob(id, name string, health float64, rec *Recorder) *Mob {
	return &Mob{id: id, name: name, health: health, maxHealth: health, rec: rec}
}

// Mob implements host.LivingEntity.
func (m *Mob) ID() string              { return m.id }
func (m *Mob) Name() string            { return m.name }
func (m *Mob) Location() host.Location { return m.location }
func (m *Mob) MaxHealth() float64      { return m.maxHealth }

func (m *Mob) Health() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.health
}

func (m *Mob) SetHealth(h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = h
}

func (m *Mob) SetFireTicks(ticks int) {
	m.mu.Lock()
	m.fireTicks = ticks
	m.mu.Unlock()
	m.rec.record(m.id, "fire", "%d ticks", ticks)
}

func (m *Mob) FireTicks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fireTicks
}

// Marker is a non-living entity such as a dropped item or an arrow.
type Marker struct {
	EntityID string
	Loc      host.Location
}

func (m Marker) ID() string              { return m.EntityID }
func (m Marker) Name() string            { return "marker" }
func (m Marker) Location() host.Location { return m.Loc }
