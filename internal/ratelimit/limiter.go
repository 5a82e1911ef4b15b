package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const pruneInterval = time.Minute

type actorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ActorLimiter throttles provider searches per actor so one agent cannot
// hammer the search provider. A global bucket caps the total rate so
// rotating actor ids does not lift the limit.
type ActorLimiter struct {
	limiters  map[string]*actorEntry
	global    *rate.Limiter
	mu        sync.Mutex
	config    Config
	now       func() time.Time
	lastPrune time.Time
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
	// GlobalRequestsPerSecond caps searches across all actors; zero
	// disables the cap.
	GlobalRequestsPerSecond float64
	GlobalBurstSize         int
	// IdleTimeout is how long an untouched actor bucket is kept.
	IdleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 1,
		BurstSize:         5,
		IdleTimeout:       10 * time.Minute,
	}
}

type Option func(*ActorLimiter)

func WithClock(now func() time.Time) Option {
	return func(l *ActorLimiter) {
		l.now = now
	}
}

// NewActorLimiter fills zero per-actor settings from DefaultConfig.
func NewActorLimiter(config Config, opts ...Option) *ActorLimiter {
	defaults := DefaultConfig()
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.BurstSize <= 0 {
		config.BurstSize = defaults.BurstSize
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}

	l := &ActorLimiter{
		limiters: make(map[string]*actorEntry),
		config:   config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if config.GlobalRequestsPerSecond > 0 {
		burst := config.GlobalBurstSize
		if burst <= 0 {
			burst = config.BurstSize
		}
		l.global = rate.NewLimiter(rate.Limit(config.GlobalRequestsPerSecond), burst)
	}
	l.lastPrune = l.now()
	return l
}

// Allow reports whether actor may start a search now. It never blocks.
func (l *ActorLimiter) Allow(actor string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= pruneInterval {
		l.pruneLocked(now)
	}

	entry, ok := l.limiters[actor]
	if !ok {
		entry = &actorEntry{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.BurstSize)}
		l.limiters[actor] = entry
	}
	entry.lastSeen = now

	if l.global != nil && l.global.TokensAt(now) < 1 {
		return false
	}
	if !entry.limiter.AllowN(now, 1) {
		return false
	}
	if l.global != nil {
		l.global.AllowN(now, 1)
	}
	return true
}

// Len is the number of actor buckets currently held.
func (l *ActorLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// pruneLocked drops buckets that were idle for IdleTimeout and have
// refilled, so forgetting them changes nothing.
func (l *ActorLimiter) pruneLocked(now time.Time) {
	l.lastPrune = now
	for actor, entry := range l.limiters {
		if now.Sub(entry.lastSeen) < l.config.IdleTimeout {
			continue
		}
		if entry.limiter.TokensAt(now) < float64(l.config.BurstSize) {
			continue
		}
		delete(l.limiters, actor)
	}
}
