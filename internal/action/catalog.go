package action

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

// ErrUnknownKind is returned by Compile for an unregistered kind.
var ErrUnknownKind = errors.New("unknown action kind")

// Factory compiles a spec of one kind into an Action.
type Factory func(spec ir.ActionSpec) (mechanic.Action, error)

// Catalog is a concurrency-safe kind → Factory registry.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog returns a catalog holding every built-in kind.
func NewCatalog() *Catalog {
	c := &Catalog{factories: make(map[string]Factory)}
	for kind, f := range builtinFactories {
		c.factories[kind] = f
	}
	return c
}

// Register adds or replaces the factory for kind.
func (c *Catalog) Register(kind string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[strings.ToLower(kind)] = f
}

// Has reports whether kind is registered.
func (c *Catalog) Has(kind string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[strings.ToLower(kind)]
	return ok
}

// Kinds returns every registered kind, sorted.
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kinds := make([]string, 0, len(c.factories))
	for k := range c.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Compile builds the Action for spec.
func (c *Catalog) Compile(spec ir.ActionSpec) (mechanic.Action, error) {
	spec.Kind = strings.ToLower(strings.TrimSpace(spec.Kind))
	c.mu.RLock()
	f, ok := c.factories[spec.Kind]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	if spec.Params == nil {
		spec.Params = ir.Params{}
	}
	a, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", spec.Kind, err)
	}
	return a, nil
}
