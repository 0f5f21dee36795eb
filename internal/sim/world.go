package sim

import (
	"fmt"
	"sync"

	"github.com/roach88/mechanics/internal/host"
)

type block struct{ x, y, z int }

// World is a flat simulated world: every block below Ground is solid,
// plus any block set with SetSolid.
type World struct {
	mu        sync.RWMutex
	name      string
	time      int64
	storming  bool
	biome     string
	ground    int
	maxHeight int
	solid     map[block]bool
	rec       *Recorder
}

// NewWorld creates a world at time 1000, clear weather, PLAINS biome,
// ground level 64 and build height 256.
func NewWorld(name string, rec *Recorder) *World {
	return &World{
		name:      name,
		time:      1000,
		biome:     "PLAINS",
		ground:    64,
		maxHeight: 256,
		solid:     make(map[block]bool),
		rec:       rec,
	}
}

// The methods below implement host.World.
func (w *World) Name() string { return w.name }

func (w *World) Time() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.time
}

// SetTime sets the time of day, wrapped into 0..23999.
func (w *World) SetTime(t int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.time = ((t % 24000) + 24000) % 24000
}

func (w *World) Storming() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.storming
}

func (w *World) SetStorming(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.storming = v
}

func (w *World) BiomeAt(host.Location) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.biome
}

func (w *World) SetBiome(b string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.biome = b
}

func (w *World) IsSolid(x, y, z int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if y < w.ground {
		return true
	}
	return w.solid[block{x, y, z}]
}

// SetSolid places or clears a solid block.
func (w *World) SetSolid(x, y, z int, solid bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if solid {
		w.solid[block{x, y, z}] = true
	} else {
		delete(w.solid, block{x, y, z})
	}
}

func (w *World) MaxHeight() int { return w.maxHeight }

func (w *World) SpawnParticle(at host.Location, name string, count int) error {
	if !KnownParticles.has(name) {
		return fmt.Errorf("particle %q: %w", name, host.ErrUnknownName)
	}
	w.rec.record(w.name, "particle", "%s x%d at %.1f,%.1f,%.1f", name, count, at.X, at.Y, at.Z)
	return nil
}
