package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rLg1290/7crm-sub003/internal/cache"
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/providers"
	"github.com/rLg1290/7crm-sub003/internal/session"
)

const fixture = `[
  {"id": 1, "airline": "GOL", "fare_label": "Light", "direction": "ida",
   "origin": "GIG", "destination": "GRU", "departure": "10/03/2026 08:00",
   "arrival": "10/03/2026 09:30", "duration": "01:30",
   "adult_fare": {"published": 300}, "boarding_tax": 50},
  {"id": 4, "airline": "GOL", "fare_label": "Light", "direction": "volta",
   "origin": "GRU", "destination": "GIG", "departure": "15/03/2026 18:00",
   "arrival": "15/03/2026 19:30", "duration": "01:30",
   "adult_fare": {"published": 320}, "boarding_tax": 50},
  {"id": 5, "airline": "LATAM", "fare_label": "Light", "direction": "volta",
   "origin": "GRU", "destination": "GIG", "departure": "15/03/2026 20:00",
   "arrival": "15/03/2026 21:10", "duration": "01:10",
   "adult_fare": {"published": 250}, "boarding_tax": 50}
]`

const searchBody = `{"origin": "GIG", "destination": "GRU", "departure_date": "2026-03-10", "return_date": "2026-03-15"}`

type stubProvider struct {
	body []byte
	err  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(ctx context.Context, params models.SearchParams) ([]byte, error) {
	return p.body, p.err
}

func newServer(provider providers.Provider) *echo.Echo {
	return newServerWithStore(provider, cache.NewMemoryStore())
}

func newServerWithStore(provider providers.Provider, store cache.Store) *echo.Echo {
	registry := session.NewRegistry(session.Dependency{
		Provider: provider,
		Cache:    cache.NewResultCache(store),
	})

	e := echo.New()
	NewQuoteHandler(registry).Register(e.Group("/api/v1"))
	e.GET("/health", HealthHandler)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body, actorID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actorID != "" {
		req.Header.Set(ActorHeader, actorID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(&stubProvider{}), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})

	rec := do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "agent-1")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[session.View](t, rec)
	assert.Equal(t, session.StatusResults, view.State)
	assert.Equal(t, 1, view.Outbound.TotalItems)
	assert.Equal(t, 2, view.Return.TotalItems)
	assert.Equal(t, "10:00", view.TimeLeft)
}

func TestSearch_Errors(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})

	rec := do(t, e, http.MethodPost, "/api/v1/regional/search", searchBody, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[models.ErrorResponse](t, rec).Error)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/search", `{"destination": "GRU"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrMissingOrigin.Error(), decode[models.ErrorResponse](t, rec).Message)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/search", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[models.ErrorResponse](t, rec).Error)
}

func TestSearch_ProviderFailure(t *testing.T) {
	upstream := providers.NewUpstreamError("stub", http.StatusServiceUnavailable, errors.New("maintenance"))
	e := newServer(&stubProvider{err: upstream})

	rec := do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[models.ErrorResponse](t, rec)
	assert.Equal(t, "provider_error", resp.Error)
	assert.True(t, resp.Retryable)

	rec = do(t, e, http.MethodGet, "/api/v1/domestic/results", "", "")
	assert.Equal(t, session.StatusFailed, decode[session.View](t, rec).State)
}

func TestResults_ActorsAndScopesAreIsolated(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "agent-1").Code)

	rec := do(t, e, http.MethodGet, "/api/v1/domestic/results", "", "agent-1")
	assert.Equal(t, session.StatusResults, decode[session.View](t, rec).State)

	rec = do(t, e, http.MethodGet, "/api/v1/domestic/results", "", "agent-2")
	assert.Equal(t, session.StatusIdle, decode[session.View](t, rec).State)

	rec = do(t, e, http.MethodGet, "/api/v1/international/results", "", "agent-1")
	assert.Equal(t, session.StatusIdle, decode[session.View](t, rec).State)
}

func TestResults_PicksUpSearchFromSharedCache(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := newServerWithStore(&stubProvider{body: []byte(fixture)}, store)
	reader := newServerWithStore(&stubProvider{}, store)

	rec := do(t, reader, http.MethodGet, "/api/v1/domestic/results", "", "agent-1")
	require.Equal(t, session.StatusIdle, decode[session.View](t, rec).State)

	require.Equal(t, http.StatusOK, do(t, searcher, http.MethodPost, "/api/v1/domestic/search", searchBody, "agent-1").Code)

	rec = do(t, reader, http.MethodGet, "/api/v1/domestic/results", "", "agent-1")
	view := decode[session.View](t, rec)
	assert.Equal(t, session.StatusResults, view.State)
	assert.Equal(t, 2, view.Return.TotalItems)
}

func TestResults_InvalidPage(t *testing.T) {
	e := newServer(&stubProvider{})
	rec := do(t, e, http.MethodGet, "/api/v1/domestic/results?outbound_page=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/v1/domestic/results?return_page=0", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricingAndFilters(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})
	do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "")

	rec := do(t, e, http.MethodPut, "/api/v1/domestic/pricing", `{"passengers": {"adults": 2}, "markup_rate": 10}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[session.View](t, rec)
	require.Len(t, view.Outbound.Items, 1)
	assert.InDelta(t, 770.0, view.Outbound.Items[0].Total, 1e-9)

	rec = do(t, e, http.MethodPut, "/api/v1/domestic/pricing", `{"passengers": {"adults": 0}, "markup_rate": 10}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPut, "/api/v1/domestic/filters", `{"airlines": ["LATAM"], "sort": "price_asc"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[session.View](t, rec)
	assert.Empty(t, view.Outbound.Items)
	assert.Len(t, view.Return.Items, 1)

	rec = do(t, e, http.MethodPut, "/api/v1/domestic/filters", `{"sort": "best_value"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectionAndItinerary(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})
	do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "")

	rec := do(t, e, http.MethodPost, "/api/v1/domestic/selection/return", `{"line_id": "4-light-370.00-0"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SelectionResponse](t, rec)
	assert.NotEmpty(t, resp.Warning)
	assert.Nil(t, resp.Selection.Return)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/selection/outbound", `{"line_id": "1-light-350.00-0"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[SelectionResponse](t, rec).Warning)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/selection/return", `{"line_id": "5-light-300.00-0"}`, "")
	assert.NotEmpty(t, decode[SelectionResponse](t, rec).Warning)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/selection/return", `{"line_id": "4-light-370.00-0"}`, "")
	require.NotNil(t, decode[SelectionResponse](t, rec).Selection.Return)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/selection/outbound", `{"line_id": "nope"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/v1/domestic/selection/outbound", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/v1/domestic/itinerary", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]models.VooCotacao](t, rec)
	require.Len(t, records, 2)
	assert.Equal(t, "ida", records[0].Direction)
	assert.Equal(t, "volta", records[1].Direction)
	assert.Equal(t, 350.0, records[0].Total)
}

func TestReset(t *testing.T) {
	e := newServer(&stubProvider{body: []byte(fixture)})
	do(t, e, http.MethodPost, "/api/v1/domestic/search", searchBody, "")

	rec := do(t, e, http.MethodDelete, "/api/v1/domestic/results", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StatusIdle, decode[session.View](t, rec).State)

	rec = do(t, e, http.MethodGet, "/api/v1/domestic/itinerary", "", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}
