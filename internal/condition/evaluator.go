package condition

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/mechanic"
)

// DefaultCacheTTL is how long a computed result is served from cache.
const DefaultCacheTTL = time.Second

// Predicate computes the raw (uninverted) result of one condition.
type Predicate func(ctx *mechanic.Context, c ir.Condition) bool

// Stats is a snapshot of evaluator state for diagnostics.
type Stats struct {
	Cached  int `json:"cached"`
	Expired int `json:"expired"`
	Custom  int `json:"custom"`
}

type cachedResult struct {
	result bool
	at     time.Time
}

type extension struct {
	fn       Predicate
	uncached bool
}

// Evaluator evaluates condition lists. It is safe for concurrent use.
type Evaluator struct {
	clock host.Clock
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cachedResult

	extMu sync.RWMutex
	ext   map[string]extension
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the time source. Default: host.SystemClock.
func WithClock(c host.Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

// WithCacheTTL sets the result cache TTL. Default: DefaultCacheTTL.
// A TTL of zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Evaluator) { e.ttl = d }
}

// New creates an evaluator with the built-in catalog and the default
// in_world extension.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		clock: host.SystemClock{},
		ttl:   DefaultCacheTTL,
		cache: make(map[string]cachedResult),
		ext:   make(map[string]extension),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ext[TypeInWorld] = extension{fn: inWorld}
	return e
}

// RegisterOption configures an extension predicate.
type RegisterOption func(*extension)

// Uncached makes every check of the predicate bypass the result cache.
// Use it for predicates that depend on more than the actor, such as the
// item or trigger of the invocation.
func Uncached() RegisterOption {
	return func(x *extension) { x.uncached = true }
}

// ErrBuiltin is returned when registering a name the catalog already owns.
var ErrBuiltin = errors.New("condition type is built in")

// Register adds or replaces an extension predicate.
func (e *Evaluator) Register(name string, p Predicate, opts ...RegisterOption) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || p == nil {
		return fmt.Errorf("register condition: empty name or nil predicate")
	}
	if _, ok := builtins[name]; ok {
		return fmt.Errorf("register condition %q: %w", name, ErrBuiltin)
	}
	x := extension{fn: p}
	for _, opt := range opts {
		opt(&x)
	}
	e.extMu.Lock()
	e.ext[name] = x
	e.extMu.Unlock()
	slog.Debug("registered condition", "type", name, "cached", !x.uncached)
	return nil
}

// Unregister removes an extension predicate.
func (e *Evaluator) Unregister(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	e.extMu.Lock()
	defer e.extMu.Unlock()
	_, ok := e.ext[name]
	delete(e.ext, name)
	return ok
}

// Known reports whether typ resolves to a built-in or extension predicate.
func (e *Evaluator) Known(typ string) bool {
	if _, ok := builtins[typ]; ok {
		return true
	}
	e.extMu.RLock()
	defer e.extMu.RUnlock()
	_, ok := e.ext[typ]
	return ok
}

// Evaluate returns the conjunction of conds. An empty list is true.
func (e *Evaluator) Evaluate(ctx *mechanic.Context, conds []ir.Condition) bool {
	for _, c := range conds {
		if !e.Check(ctx, c) {
			return false
		}
	}
	return true
}

// Check evaluates a single condition, inversion included.
func (e *Evaluator) Check(ctx *mechanic.Context, c ir.Condition) bool {
	if ctx == nil || ctx.Actor() == nil {
		return false
	}
	raw, ok := e.raw(ctx, c)
	if !ok {
		return false
	}
	return raw != c.Inverted()
}

// raw returns the cached or computed uninverted result. ok is false when
// the type is unknown; unknown types evaluate to false regardless of
// inversion.
func (e *Evaluator) raw(ctx *mechanic.Context, c ir.Condition) (result, ok bool) {
	pred, cacheable, known := e.resolve(c.Type())
	if !known {
		slog.Warn("unknown condition type",
			"type", c.Type(),
			"actor", ctx.ActorID(),
			"item", ctx.DefinitionID())
		return false, false
	}

	if !cacheable || e.ttl <= 0 {
		return e.compute(ctx, c, pred), true
	}

	key := cacheKey(ctx, c)
	now := e.clock.Now()

	e.mu.Lock()
	if hit, found := e.cache[key]; found && now.Sub(hit.at) < e.ttl {
		e.mu.Unlock()
		return hit.result, true
	}
	e.mu.Unlock()

	result = e.compute(ctx, c, pred)

	e.mu.Lock()
	e.cache[key] = cachedResult{result: result, at: now}
	e.mu.Unlock()
	return result, true
}

func (e *Evaluator) resolve(typ string) (Predicate, bool, bool) {
	if b, ok := builtins[typ]; ok {
		return func(ctx *mechanic.Context, c ir.Condition) bool { return b(e, ctx, c) }, true, true
	}
	e.extMu.RLock()
	defer e.extMu.RUnlock()
	if x, ok := e.ext[typ]; ok {
		return x.fn, !x.uncached, true
	}
	return nil, false, false
}

// compute runs a predicate; a panicking predicate evaluates to false.
func (e *Evaluator) compute(ctx *mechanic.Context, c ir.Condition, p Predicate) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("condition check panicked",
				"condition", c.String(),
				"actor", ctx.ActorID(),
				"panic", fmt.Sprint(r))
			result = false
		}
	}()
	return p(ctx, c)
}

// cacheKey is (actor, type, operand). Target-dependent types also key on
// the target so a cached result never leaks across targets.
func cacheKey(ctx *mechanic.Context, c ir.Condition) string {
	var b strings.Builder
	b.WriteString(ctx.ActorID())
	b.WriteByte('|')
	b.WriteString(c.Type())
	b.WriteByte('|')
	b.WriteString(c.Operand())
	if strings.HasPrefix(c.Type(), "target_") {
		b.WriteByte('|')
		if t := ctx.Target(); t != nil {
			b.WriteString(t.ID())
		}
	}
	return b.String()
}

// Sweep drops expired cache entries and returns how many were removed.
func (e *Evaluator) Sweep() int {
	now := e.clock.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for k, v := range e.cache {
		if now.Sub(v.at) >= e.ttl {
			delete(e.cache, k)
			removed++
		}
	}
	return removed
}

// ForgetActor drops every cache entry of one actor.
func (e *Evaluator) ForgetActor(actorID string) int {
	prefix := actorID + "|"
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for k := range e.cache {
		if strings.HasPrefix(k, prefix) {
			delete(e.cache, k)
			removed++
		}
	}
	return removed
}

// ClearCache drops every cache entry.
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.cache)
}

// Stats returns cache and registry counters.
func (e *Evaluator) Stats() Stats {
	now := e.clock.Now()
	var s Stats

	e.mu.Lock()
	s.Cached = len(e.cache)
	for _, v := range e.cache {
		if now.Sub(v.at) >= e.ttl {
			s.Expired++
		}
	}
	e.mu.Unlock()

	e.extMu.RLock()
	s.Custom = len(e.ext)
	e.extMu.RUnlock()
	return s
}
