// Package cooldown implements the cooldown registry: a key → expiry store
// with a short-lived status cache and a lazy sweep of expired entries.
//
// Keys are partitioned by actor ("actor:item:TRIGGER"), so clearing one
// actor never touches another actor's entries.
package cooldown

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
)

const (
	// DefaultStatusTTL is how long an IsActive answer is served from cache.
	DefaultStatusTTL = time.Second

	// DefaultSweepInterval bounds how often Set sweeps expired entries.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultHealthLimit is the map size above which Healthy reports false.
	DefaultHealthLimit = 10000
)

// Key builds the cooldown key of (actor, item definition, trigger).
func Key(actorID, itemID string, trigger ir.TriggerKind) string {
	return actorID + ":" + itemID + ":" + trigger.Name()
}

// Entry is one persisted cooldown.
type Entry struct {
	Key             string `json:"key"`
	ExpiresAtMillis int64  `json:"expires_at_ms"`
}

// Stats is a snapshot of registry sizes.
type Stats struct {
	Active  int  `json:"active"`
	Cached  int  `json:"cached"`
	Expired int  `json:"expired"`
	Healthy bool `json:"healthy"`
}

type status struct {
	active bool
	at     int64
}

// Registry tracks cooldown expiries. It is safe for concurrent use.
type Registry struct {
	clock      host.Clock
	statusTTL  time.Duration
	sweepEvery time.Duration
	limit      int

	mu        sync.Mutex
	expiry    map[string]int64
	status    map[string]status
	lastSweep int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source. Default: host.SystemClock.
func WithClock(c host.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithStatusTTL sets the status cache TTL. Zero disables the cache.
func WithStatusTTL(d time.Duration) Option {
	return func(r *Registry) { r.statusTTL = d }
}

// WithSweepInterval sets the minimum time between lazy sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.sweepEvery = d }
}

// WithHealthLimit sets the size above which Healthy reports false.
func WithHealthLimit(n int) Option {
	return func(r *Registry) { r.limit = n }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		clock:      host.SystemClock{},
		statusTTL:  DefaultStatusTTL,
		sweepEvery: DefaultSweepInterval,
		limit:      DefaultHealthLimit,
		expiry:     make(map[string]int64),
		status:     make(map[string]status),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

func (r *Registry) now() int64 { return r.clock.Now().UnixMilli() }

// Set starts a cooldown of seconds on key, replacing any existing one.
// seconds <= 0 clears the key.
func (r *Registry) Set(key string, seconds int) {
	if seconds <= 0 {
		r.Clear(key)
		return
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiry[key] = now + int64(seconds)*1000
	r.status[key] = status{active: true, at: now}
	r.maybeSweepLocked(now)
}

// IsActive reports whether key is cooling down. Expired entries are
// deleted on read. A cached true is never served past the expiry.
func (r *Registry) IsActive(key string) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.status[key]; ok && r.statusTTL > 0 && now-st.at < r.statusTTL.Milliseconds() {
		if !st.active {
			return false
		}
		if exp, ok := r.expiry[key]; ok && now < exp {
			return true
		}
	}

	exp, ok := r.expiry[key]
	if !ok || now >= exp {
		r.deleteLocked(key)
		return false
	}
	if r.statusTTL > 0 {
		r.status[key] = status{active: true, at: now}
	}
	return true
}

// Remaining returns the whole seconds left on key, rounded up, or 0.
func (r *Registry) Remaining(key string) int64 {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remainingLocked(key, now)
}

func (r *Registry) remainingLocked(key string, now int64) int64 {
	exp, ok := r.expiry[key]
	if !ok || now >= exp {
		r.deleteLocked(key)
		return 0
	}
	return (exp - now + 999) / 1000
}

// Update sets key to expire seconds from now unless it already expires
// later. It never shortens a cooldown. It reports whether the expiry moved.
func (r *Registry) Update(key string, seconds int) bool {
	if seconds <= 0 {
		return false
	}
	now := r.now()
	newExp := now + int64(seconds)*1000
	r.mu.Lock()
	defer r.mu.Unlock()
	if exp, ok := r.expiry[key]; ok && exp > now && exp >= newExp {
		return false
	}
	r.expiry[key] = newExp
	r.status[key] = status{active: true, at: now}
	return true
}

// Reduce shortens key by seconds, clearing it when nothing would remain.
// It reports false when key had no active cooldown.
func (r *Registry) Reduce(key string, seconds int) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.expiry[key]
	if !ok || now >= exp {
		r.deleteLocked(key)
		return false
	}
	if seconds <= 0 {
		return true
	}
	newExp := exp - int64(seconds)*1000
	if newExp <= now {
		r.deleteLocked(key)
		return true
	}
	r.expiry[key] = newExp
	delete(r.status, key)
	return true
}

// Clear removes key.
func (r *Registry) Clear(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(key)
}

// ClearActor removes every key of actorID and returns how many cooldowns
// were removed.
func (r *Registry) ClearActor(actorID string) int {
	prefix := actorID + ":"
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.expiry {
		if strings.HasPrefix(k, prefix) {
			delete(r.expiry, k)
			n++
		}
	}
	for k := range r.status {
		if strings.HasPrefix(k, prefix) {
			delete(r.status, k)
		}
	}
	return n
}

// ClearAll removes every cooldown.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.expiry)
	clear(r.status)
}

// Sweep removes every expired entry and stale status record and returns
// how many cooldowns were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

func (r *Registry) maybeSweepLocked(now int64) {
	if now-r.lastSweep < r.sweepEvery.Milliseconds() {
		return
	}
	if n := r.sweepLocked(now); n > 0 {
		slog.Debug("swept expired cooldowns", "removed", n, "active", len(r.expiry))
	}
}

func (r *Registry) sweepLocked(now int64) int {
	r.lastSweep = now
	n := 0
	for k, exp := range r.expiry {
		if now >= exp {
			delete(r.expiry, k)
			delete(r.status, k)
			n++
		}
	}
	for k, st := range r.status {
		if _, ok := r.expiry[k]; !ok || now-st.at >= r.statusTTL.Milliseconds() {
			delete(r.status, k)
		}
	}
	return n
}

func (r *Registry) deleteLocked(key string) {
	delete(r.expiry, key)
	delete(r.status, key)
}

// ActorCooldowns returns the active cooldowns of actorID, keyed by the
// rest of the key ("item:TRIGGER"), with remaining seconds.
func (r *Registry) ActorCooldowns(actorID string) map[string]int64 {
	prefix := actorID + ":"
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for k := range r.expiry {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if rem := r.remainingLocked(k, now); rem > 0 {
			out[strings.TrimPrefix(k, prefix)] = rem
		}
	}
	return out
}

// Len returns the number of stored cooldowns, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expiry)
}

// Stats returns registry sizes.
func (r *Registry) Stats() Stats {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{Cached: len(r.status)}
	for _, exp := range r.expiry {
		if now >= exp {
			s.Expired++
		} else {
			s.Active++
		}
	}
	s.Healthy = len(r.expiry) < r.limit && len(r.status) < r.limit
	return s
}

// Healthy reports whether both maps are below the health limit. A false
// result points at a leak; it is diagnostic only.
func (r *Registry) Healthy() bool {
	return r.Stats().Healthy
}

// DebugInfo returns a one-line summary for logs and status output.
func (r *Registry) DebugInfo() string {
	s := r.Stats()
	r.mu.Lock()
	since := time.Duration(r.now()-r.lastSweep) * time.Millisecond
	r.mu.Unlock()
	return fmt.Sprintf("cooldowns: active=%d expired=%d cached=%d healthy=%t last_sweep=%s ago",
		s.Active, s.Expired, s.Cached, s.Healthy, since.Truncate(time.Second))
}

// Snapshot returns every active cooldown, sorted by key.
func (r *Registry) Snapshot() []Entry {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.expiry))
	for k, exp := range r.expiry {
		if now < exp {
			out = append(out, Entry{Key: k, ExpiresAtMillis: exp})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Restore loads entries, skipping any already expired, and returns how
// many were loaded. Existing keys are overwritten.
func (r *Registry) Restore(entries []Entry) int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range entries {
		if e.Key == "" || e.ExpiresAtMillis <= now {
			continue
		}
		r.expiry[e.Key] = e.ExpiresAtMillis
		delete(r.status, e.Key)
		n++
	}
	return n
}
