package mechanic

import (
	"slices"
	"sync"

	"github.com/roach88/mechanics/internal/ir"
)

// Definition is an item definition with its mechanics compiled to Actions.
type Definition struct {
	Item     ir.ItemDefinition
	Hash     string
	Triggers map[ir.TriggerKind][]Action
}

// ID returns the item definition ID.
func (d *Definition) ID() string { return d.Item.ID }

// HasTrigger reports whether at least one action is bound to k.
func (d *Definition) HasTrigger(k ir.TriggerKind) bool {
	return d != nil && len(d.Triggers[k]) > 0
}

// Actions returns the actions bound to k in declaration order.
func (d *Definition) Actions(k ir.TriggerKind) []Action {
	if d == nil {
		return nil
	}
	return d.Triggers[k]
}

// Provider resolves item definition IDs to compiled definitions.
type Provider interface {
	Lookup(id string) (*Definition, bool)
}

// Registry is a concurrency-safe in-memory Provider.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Put adds or replaces a definition.
func (r *Registry) Put(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID()] = def
}

// Lookup implements Provider.
func (r *Registry) Lookup(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	return def, ok
}

// IDs returns all definition IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
