package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rLg1290/7crm-sub003/internal/filter"
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/providers"
	"github.com/rLg1290/7crm-sub003/internal/selection"
	"github.com/rLg1290/7crm-sub003/internal/session"
)

const (
	ActorHeader  = "X-Actor-ID"
	DefaultActor = "anonymous"
)

type QuoteHandler struct {
	sessions *session.Registry
}

func NewQuoteHandler(sessions *session.Registry) *QuoteHandler {
	return &QuoteHandler{sessions: sessions}
}

// Register mounts the quote routes under g.
func (h *QuoteHandler) Register(g *echo.Group) {
	scoped := g.Group("/:scope")
	scoped.POST("/search", h.Search)
	scoped.GET("/results", h.Results)
	scoped.DELETE("/results", h.Reset)
	scoped.PUT("/pricing", h.SetPricing)
	scoped.PUT("/filters", h.SetFilters)
	scoped.POST("/selection/outbound", h.SelectOutbound)
	scoped.POST("/selection/return", h.SelectReturn)
	scoped.GET("/itinerary", h.Itinerary)
}

type PricingRequest struct {
	Passengers models.PassengerCounts `json:"passengers"`
	MarkupRate float64                `json:"markup_rate"`
}

type SelectRequest struct {
	LineID string `json:"line_id"`
}

type SelectionResponse struct {
	Selection selection.State `json:"selection"`
	Warning   string          `json:"warning,omitempty"`
}

func (h *QuoteHandler) Search(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	var params models.SearchParams
	if err := c.Bind(&params); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	if err := s.Search(c.Request().Context(), params); err != nil {
		return searchError(c, err)
	}
	return c.JSON(http.StatusOK, s.View(0, 0))
}

func (h *QuoteHandler) Results(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	outboundPage, err := pageParam(c, "outbound_page")
	if err != nil {
		return badRequest(c, "invalid_request", err.Error())
	}
	returnPage, err := pageParam(c, "return_page")
	if err != nil {
		return badRequest(c, "invalid_request", err.Error())
	}

	s.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, s.View(outboundPage, returnPage))
}

func (h *QuoteHandler) Reset(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}
	s.Reset(c.Request().Context())
	return c.JSON(http.StatusOK, s.View(0, 0))
}

func (h *QuoteHandler) SetPricing(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	var req PricingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := s.SetPricing(req.Passengers, req.MarkupRate); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}
	return c.JSON(http.StatusOK, s.View(0, 0))
}

func (h *QuoteHandler) SetFilters(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	var criteria filter.Criteria
	if err := c.Bind(&criteria); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := s.SetCriteria(criteria); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}
	return c.JSON(http.StatusOK, s.View(0, 0))
}

func (h *QuoteHandler) SelectOutbound(c echo.Context) error {
	return h.selectLine(c, (*session.Session).SelectOutbound)
}

func (h *QuoteHandler) SelectReturn(c echo.Context) error {
	return h.selectLine(c, (*session.Session).SelectReturn)
}

func (h *QuoteHandler) Itinerary(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}
	return c.JSON(http.StatusOK, s.Itinerary())
}

// selectLine applies a selection. Rule violations leave the selection
// unchanged and come back as a warning, not an error status.
func (h *QuoteHandler) selectLine(c echo.Context, apply func(*session.Session, string) (selection.State, error)) error {
	s, err := h.session(c)
	if err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if req.LineID == "" {
		return badRequest(c, "validation_error", "line_id is required")
	}

	state, err := apply(s, req.LineID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, SelectionResponse{Selection: state})
	case errors.Is(err, session.ErrLineNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "line_not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	default:
		return c.JSON(http.StatusOK, SelectionResponse{Selection: state, Warning: err.Error()})
	}
}

func (h *QuoteHandler) session(c echo.Context) (*session.Session, error) {
	scope, err := models.ParseScope(c.Param("scope"))
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(c.Request().Context(), actor(c), scope), nil
}

func actor(c echo.Context) string {
	if id := c.Request().Header.Get(ActorHeader); id != "" {
		return id
	}
	return DefaultActor
}

func pageParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return page, nil
}

func badRequest(c echo.Context, code, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func searchError(c echo.Context, err error) error {
	var validation models.ValidationError
	var upstream *providers.UpstreamError

	switch {
	case errors.As(err, &validation):
		return badRequest(c, "validation_error", err.Error())
	case errors.Is(err, session.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:     "rate_limited",
			Message:   err.Error(),
			Code:      http.StatusTooManyRequests,
			Retryable: true,
		})
	case errors.Is(err, session.ErrStaleSearch):
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "stale_search",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
	case errors.As(err, &upstream):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "provider_error",
			Message:   "Flight provider returned an error: " + err.Error(),
			Code:      http.StatusBadGateway,
			Retryable: true,
		})
	default:
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "search_failed",
			Message:   "Flight search failed: " + err.Error(),
			Code:      http.StatusBadGateway,
			Retryable: true,
		})
	}
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
