package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/cache"
	"github.com/rLg1290/7crm-sub003/internal/models"
)

// IdleTimeout is how long a session without results is kept after its
// last use.
const IdleTimeout = cache.TTL

const sweepInterval = time.Minute

type registryEntry struct {
	session  *Session
	lastUsed time.Time
}

// Registry hands out one Session per actor and scope. Sessions holding no
// results are dropped once unused for IdleTimeout.
type Registry struct {
	deps Dependency
	now  func() time.Time

	mu        sync.Mutex
	sessions  map[cache.Key]*registryEntry
	lastSweep time.Time
}

func NewRegistry(deps Dependency) *Registry {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		deps:      deps,
		now:       now,
		sessions:  make(map[cache.Key]*registryEntry),
		lastSweep: now(),
	}
}

// Get returns the session for actor and scope, restoring a fresh cached
// search when the session is created.
func (r *Registry) Get(ctx context.Context, actor string, scope models.Scope) *Session {
	key := cache.Key{Actor: actor, Scope: scope}
	now := r.now()

	r.mu.Lock()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.sweepLocked(now)
	}
	entry, ok := r.sessions[key]
	if !ok {
		entry = &registryEntry{session: New(key, r.deps)}
		r.sessions[key] = entry
	}
	entry.lastUsed = now
	r.mu.Unlock()

	if !ok {
		entry.session.Restore(ctx)
	}
	return entry.session
}

// Sweep drops idle sessions and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	r.lastSweep = now
	removed := 0
	for key, entry := range r.sessions {
		if now.Sub(entry.lastUsed) < IdleTimeout || !entry.session.Idle() {
			continue
		}
		entry.session.Close()
		delete(r.sessions, key)
		removed++
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(r.sessions)).Msg("swept idle sessions")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every countdown. Sessions stay readable.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.sessions {
		entry.session.Close()
	}
}
