package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rLg1290/7crm-sub003/internal/filter"
	"github.com/rLg1290/7crm-sub003/internal/itinerary"
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/offers"
	"github.com/rLg1290/7crm-sub003/internal/pricing"
	"github.com/rLg1290/7crm-sub003/internal/selection"
)

// View is everything a results page renders for one session.
type View struct {
	State        Status                 `json:"state"`
	Message      string                 `json:"message,omitempty"`
	Retryable    bool                   `json:"retryable"`
	SearchParams *models.SearchParams   `json:"search_params,omitempty"`
	Passengers   models.PassengerCounts `json:"passengers"`
	MarkupRate   float64                `json:"markup_rate"`
	Criteria     filter.Criteria        `json:"criteria"`
	Airlines     []string               `json:"airlines"`
	Outbound     filter.Page            `json:"outbound"`
	Return       filter.Page            `json:"return"`
	Selection    selection.State        `json:"selection"`
	CapturedAt   *time.Time             `json:"captured_at,omitempty"`
	TimeLeft     string                 `json:"time_left"`
	SecondsLeft  int                    `json:"seconds_left"`
}

// View derives the visible lists. A positive page number moves that
// list's cursor; zero keeps it where it was.
func (s *Session) View(outboundPage, returnPage int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection.State()
	result := Derive(s.offers, s.pax, s.markup, s.criteria, sel.Outbound)

	v := View{
		State:        s.status,
		SearchParams: s.params,
		Passengers:   s.pax,
		MarkupRate:   s.markup,
		Criteria:     s.criteria,
		Airlines:     offers.Airlines(s.offers),
		Outbound:     s.outboundPager.Page(result.Outbound, outboundPage),
		Return:       s.returnPager.Page(result.Return, returnPage),
		Selection:    sel,
	}

	switch s.status {
	case StatusFailed:
		v.Message = "Flight search failed. Please try again."
		if s.failure != "" {
			v.Message += " (" + s.failure + ")"
		}
		v.Retryable = true
	case StatusExpired:
		v.Message = "Search results expired. Run the search again."
		v.Retryable = true
	case StatusResults:
		if len(result.Outbound) == 0 && len(result.Return) == 0 {
			v.State = StatusNoResults
			v.Message = "No flights match the current filters."
		}
	case StatusNoResults:
		v.Message = "No flights found for this search."
	}

	if !s.capturedAt.IsZero() {
		captured := s.capturedAt
		v.CapturedAt = &captured
		left := s.countdown.TimeLeft()
		v.TimeLeft = FormatTimeLeft(left)
		v.SecondsLeft = int(left / time.Second)
	} else {
		v.TimeLeft = FormatTimeLeft(0)
	}
	return v
}

// FormatTimeLeft renders a duration as MM:SS.
func FormatTimeLeft(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// SetPricing changes the passenger composition and markup. Selected lines
// are re-priced in place.
func (s *Session) SetPricing(pax models.PassengerCounts, markupRate float64) error {
	if err := pax.Validate(); err != nil {
		return err
	}
	if err := models.ValidateMarkupRate(markupRate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pax = pax
	s.markup = markupRate
	s.repriceSelectionLocked()
	return nil
}

func (s *Session) SetCriteria(c filter.Criteria) error {
	key, err := filter.ParseSortKey(string(c.Sort))
	if err != nil {
		return err
	}
	c.Sort = key

	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	return nil
}

func (s *Session) SelectOutbound(lineID string) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.findLocked(lineID)
	if !ok {
		return s.selection.State(), ErrLineNotFound
	}
	if line.Direction == models.DirectionReturn {
		return s.selection.State(), ErrNotOutbound
	}
	return s.selection.SelectOutbound(line), nil
}

func (s *Session) SelectReturn(lineID string) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.findLocked(lineID)
	if !ok {
		return s.selection.State(), ErrLineNotFound
	}
	if line.Direction != models.DirectionReturn {
		return s.selection.State(), ErrNotReturn
	}
	return s.selection.SelectReturn(line)
}

func (s *Session) Selection() selection.State {
	return s.selection.State()
}

// Itinerary lists the selected flights in output form, outbound first.
func (s *Session) Itinerary() []models.VooCotacao {
	return itinerary.FromSelection(s.selection.State())
}

// TimeLeft reports the remaining lifetime of the current results.
func (s *Session) TimeLeft() time.Duration {
	return s.countdown.TimeLeft()
}

// Tick drives the countdown by hand when no tick interval is configured.
func (s *Session) Tick() bool {
	return s.countdown.Tick()
}

// Refresh reloads the session from the cache when it holds no results,
// picking up a search saved by another server sharing the cache.
func (s *Session) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	empty := s.params == nil
	s.mu.Unlock()
	if !empty {
		return false
	}
	return s.Restore(ctx)
}

// findLocked looks in the current selection first so a selected line can
// be toggled off even when the filters hide it.
func (s *Session) findLocked(lineID string) (models.PricedLine, bool) {
	sel := s.selection.State()
	if sel.Outbound != nil && sel.Outbound.ID == lineID {
		return *sel.Outbound, true
	}
	if sel.Return != nil && sel.Return.ID == lineID {
		return *sel.Return, true
	}
	for _, line := range pricing.Lines(s.offers, s.pax, s.markup) {
		if line.ID == lineID {
			return line, true
		}
	}
	return models.PricedLine{}, false
}

func (s *Session) repriceSelectionLocked() {
	sel := s.selection.State()
	if sel.Outbound == nil {
		return
	}
	lines := pricing.Lines(s.offers, s.pax, s.markup)
	outbound, ok := sameVariant(lines, *sel.Outbound)
	s.selection.Reset()
	if !ok {
		return
	}
	s.selection.SelectOutbound(outbound)
	if sel.Return == nil {
		return
	}
	if ret, ok := sameVariant(lines, *sel.Return); ok {
		_, _ = s.selection.SelectReturn(ret)
	}
}

func sameVariant(lines []models.PricedLine, target models.PricedLine) (models.PricedLine, bool) {
	for _, line := range lines {
		if line.LegID == target.LegID && line.VariantIndex == target.VariantIndex &&
			line.Airline == target.Airline && line.Departure == target.Departure {
			return line, true
		}
	}
	return models.PricedLine{}, false
}
