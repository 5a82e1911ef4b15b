package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

// TTL is how long a saved search stays usable.
const TTL = 10 * time.Minute

// Key identifies one cached search: the actor that ran it and the scope
// of the search page.
type Key struct {
	Actor string
	Scope models.Scope
}

func (k Key) String() string {
	return "flightquote:search:" + k.Actor + ":" + string(k.Scope)
}

// Record is what a Store persists: the JSON-encoded entry and its
// expiry instant.
type Record struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type Store interface {
	Get(ctx context.Context, key Key) (Record, bool, error)
	Set(ctx context.Context, key Key, rec Record) error
	Delete(ctx context.Context, key Key) error
	Close() error
}

type ResultCache struct {
	store Store
	now   func() time.Time
}

type Option func(*ResultCache)

func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		c.now = now
	}
}

func NewResultCache(store Store, opts ...Option) *ResultCache {
	c := &ResultCache{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save stores the search snapshot with CapturedAt set to now. The entry is
// returned even when the store fails so callers can keep going.
func (c *ResultCache) Save(ctx context.Context, key Key, params models.SearchParams, offers []models.Offer, lines []models.PricedLine) (models.CacheEntry, error) {
	entry := models.CacheEntry{
		CapturedAt:   c.now(),
		SearchParams: params,
		Offers:       offers,
		PriceLines:   lines,
		Scope:        key.Scope,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("key", key.String()).Msg("failed to encode search cache")
		return entry, err
	}

	rec := Record{Data: data, ExpiresAt: entry.CapturedAt.Add(TTL)}
	if err := c.store.Set(ctx, key, rec); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("failed to save search cache")
		return entry, err
	}
	return entry, nil
}

// Load returns the cached entry while it is younger than TTL. Stale or
// unreadable entries are deleted. Store failures count as a miss.
func (c *ResultCache) Load(ctx context.Context, key Key) (models.CacheEntry, bool) {
	rec, found, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("failed to read search cache")
		return models.CacheEntry{}, false
	}
	if !found {
		return models.CacheEntry{}, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(rec.Data, &entry); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("discarding unreadable search cache")
		c.Clear(ctx, key)
		return models.CacheEntry{}, false
	}

	if c.now().Sub(entry.CapturedAt) >= TTL {
		c.Clear(ctx, key)
		return models.CacheEntry{}, false
	}
	return entry, true
}

func (c *ResultCache) Clear(ctx context.Context, key Key) {
	if err := c.store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("failed to clear search cache")
	}
}
