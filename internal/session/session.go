// Package session holds the per-actor, per-scope search state: the merged
// offers of the last search, pricing inputs, filters, selection, page
// cursors and the result-expiry countdown.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/cache"
	"github.com/rLg1290/7crm-sub003/internal/filter"
	"github.com/rLg1290/7crm-sub003/internal/legs"
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/offers"
	"github.com/rLg1290/7crm-sub003/internal/pricing"
	"github.com/rLg1290/7crm-sub003/internal/providers"
	"github.com/rLg1290/7crm-sub003/internal/ratelimit"
	"github.com/rLg1290/7crm-sub003/internal/selection"
)

var (
	ErrStaleSearch  = errors.New("search was superseded by a newer one")
	ErrRateLimited  = errors.New("too many searches, try again shortly")
	ErrLineNotFound = errors.New("line is not part of the current results")
	ErrNotOutbound  = errors.New("line is a return flight")
	ErrNotReturn    = errors.New("line is not a return flight")
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusResults   Status = "results"
	StatusNoResults Status = "no_results"
	StatusFailed    Status = "search_failed"
	StatusExpired   Status = "expired"
)

type Dependency struct {
	Provider      providers.Provider
	Cache         *cache.ResultCache
	Limiter       *ratelimit.ActorLimiter
	Now           func() time.Time
	TickInterval  time.Duration
	DefaultMarkup float64
}

type Session struct {
	key  cache.Key
	deps Dependency

	mu         sync.Mutex
	params     *models.SearchParams
	offers     []models.Offer
	capturedAt time.Time
	status     Status
	failure    string
	pax        models.PassengerCounts
	markup     float64
	criteria   filter.Criteria
	latestTag  string

	selection     *selection.Machine
	outboundPager filter.Pager
	returnPager   filter.Pager
	countdown     *cache.Countdown
}

func New(key cache.Key, deps Dependency) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{
		key:       key,
		deps:      deps,
		status:    StatusIdle,
		pax:       models.DefaultPassengers(),
		markup:    deps.DefaultMarkup,
		criteria:  filter.DefaultCriteria(),
		selection: selection.New(),
	}
	s.countdown = cache.NewCountdown(s.expire,
		cache.WithCountdownClock(deps.Now),
		cache.WithTickInterval(deps.TickInterval))
	return s
}

// Derive prices offers and runs them through the filter pipeline.
func Derive(all []models.Offer, pax models.PassengerCounts, markupRate float64, c filter.Criteria, outbound *models.PricedLine) filter.Result {
	return filter.Apply(pricing.Lines(all, pax, markupRate), c, outbound)
}

// Restore loads the cached search, if any is still fresh.
func (s *Session) Restore(ctx context.Context) bool {
	if s.deps.Cache == nil {
		return false
	}
	entry, ok := s.deps.Cache.Load(ctx, s.key)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.params != nil {
		return false
	}
	params := entry.SearchParams
	s.params = &params
	s.offers = entry.Offers
	s.pax = params.Passengers
	s.capturedAt = entry.CapturedAt
	s.status = statusFor(entry.Offers)
	s.countdown.Restart(entry.CapturedAt)

	log.Info().Str("actor", s.key.Actor).Str("scope", string(s.key.Scope)).
		Int("offers", len(entry.Offers)).Msg("restored cached search")
	return true
}

// Search runs a provider search and replaces the session results. A
// response that arrives after a newer search was issued is dropped with
// ErrStaleSearch. On provider failure the previous results stay in place.
func (s *Session) Search(ctx context.Context, params models.SearchParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if s.deps.Limiter != nil && !s.deps.Limiter.Allow(s.key.Actor) {
		return ErrRateLimited
	}

	tag := newTag(s.deps.Now())
	s.mu.Lock()
	s.latestTag = tag
	s.mu.Unlock()

	start := time.Now()
	body, err := s.deps.Provider.Search(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.With().Str("actor", s.key.Actor).Str("scope", string(s.key.Scope)).Str("tag", tag).Logger()

	if tag != s.latestTag {
		logger.Info().Msg("discarding superseded search response")
		return ErrStaleSearch
	}
	if err != nil {
		logger.Error().Err(err).Msg("provider search failed")
		s.status = StatusFailed
		s.failure = err.Error()
		return err
	}

	parsed, perr := legs.ParseResponse(body)
	if perr != nil {
		logger.Warn().Err(perr).Msg("unexpected provider response, treating as empty")
	}
	merged := offers.Merge(parsed)

	s.params = &params
	s.offers = merged
	s.pax = params.Passengers
	s.status = statusFor(merged)
	s.failure = ""
	s.criteria.Airlines = nil
	s.selection.Reset()
	s.outboundPager.Reset()
	s.returnPager.Reset()

	s.capturedAt = s.deps.Now()
	if s.deps.Cache != nil {
		lines := pricing.Lines(merged, s.pax, s.markup)
		entry, _ := s.deps.Cache.Save(ctx, s.key, params, merged, lines)
		s.capturedAt = entry.CapturedAt
	}
	s.countdown.Restart(s.capturedAt)

	logger.Info().Int("legs", len(parsed)).Int("offers", len(merged)).
		Dur("elapsed", time.Since(start)).Msg("search completed")
	return nil
}

// Reset drops results, selection and the cached entry. Any search still
// in flight is ignored when it returns.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked(StatusIdle)
	s.latestTag = newTag(s.deps.Now())
	s.mu.Unlock()

	s.countdown.Stop()
	if s.deps.Cache != nil {
		s.deps.Cache.Clear(ctx, s.key)
	}
}

// expire is the countdown callback. It ignores stale callbacks from a
// countdown that was re-armed by a newer search.
func (s *Session) expire() {
	s.mu.Lock()
	if s.capturedAt.IsZero() || s.deps.Now().Sub(s.capturedAt) < cache.TTL {
		s.mu.Unlock()
		return
	}
	s.clearLocked(StatusExpired)
	s.mu.Unlock()

	log.Info().Str("actor", s.key.Actor).Str("scope", string(s.key.Scope)).Msg("search results expired")
	if s.deps.Cache != nil {
		s.deps.Cache.Clear(context.Background(), s.key)
	}
}

func (s *Session) clearLocked(status Status) {
	s.params = nil
	s.offers = nil
	s.capturedAt = time.Time{}
	s.status = status
	s.failure = ""
	s.criteria.Airlines = nil
	s.selection.Reset()
	s.outboundPager.Reset()
	s.returnPager.Reset()
}

// Idle reports whether the session holds no results, which is the case
// before the first search and after expiry or a reset.
func (s *Session) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params == nil
}

func (s *Session) Close() {
	s.countdown.Stop()
}

func statusFor(o []models.Offer) Status {
	if len(o) == 0 {
		return StatusNoResults
	}
	return StatusResults
}

func newTag(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
