package sim

import (
	"fmt"
	"slices"
	"sync"
)

// Server groups the worlds and actors of one simulation around a shared
// Recorder.
type Server struct {
	mu     sync.RWMutex
	rec    *Recorder
	worlds map[string]*World
	actors map[string]*Actor
	mobs   map[string]*Mob
}

// NewServer creates a server with a single world named "world".
func NewServer() *Server {
	s := &Server{
		rec:    NewRecorder(),
		worlds: make(map[string]*World),
		actors: make(map[string]*Actor),
		mobs:   make(map[string]*Mob),
	}
	s.worlds["world"] = NewWorld("world", s.rec)
	return s
}

// Recorder returns the shared event recorder.
func (s *Server) Recorder() *Recorder { return s.rec }

// World returns the named world, creating it on first use.
func (s *Server) World(name string) *World {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.worlds[name]
	if !ok {
		w = NewWorld(name, s.rec)
		s.worlds[name] = w
	}
	return w
}

// AddActor creates an actor in the named world.
func (s *Server) AddActor(id, name, world string) *Actor {
	w := s.World(world)
	a := NewActor(id, name, w, s.rec)
	s.mu.Lock()
	s.actors[id] = a
	s.mu.Unlock()
	return a
}

// AddMob creates a mob.
func (s *Server) AddMob(id, name string, health float64) *Mob {
	m := NewMob(id, name, health, s.rec)
	s.mu.Lock()
	s.mobs[id] = m
	s.mu.Unlock()
	return m
}

// Actor returns an actor by ID.
func (s *Server) Actor(id string) (*Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("unknown actor %q", id)
	}
	return a, nil
}

// Mob returns a mob by ID.
func (s *Server) Mob(id string) (*Mob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mobs[id]
	if !ok {
		return nil, fmt.Errorf("unknown mob %q", id)
	}
	return m, nil
}

// ActorIDs returns the IDs of every actor, sorted.
func (s *Server) ActorIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
