package filter

import (
	"sort"
	"strings"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

type SortKey string

const (
	PriceAsc      SortKey = "price_asc"
	PriceDesc     SortKey = "price_desc"
	DepartureAsc  SortKey = "departure_asc"
	DepartureDesc SortKey = "departure_desc"
	ArrivalAsc    SortKey = "arrival_asc"
	ArrivalDesc   SortKey = "arrival_desc"
	DurationAsc   SortKey = "duration_asc"
	DurationDesc  SortKey = "duration_desc"
)

var sortKeys = []SortKey{
	PriceAsc, PriceDesc,
	DepartureAsc, DepartureDesc,
	ArrivalAsc, ArrivalDesc,
	DurationAsc, DurationDesc,
}

func SortKeys() []SortKey {
	return append([]SortKey(nil), sortKeys...)
}

// ParseSortKey returns PriceAsc for an empty string.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return PriceAsc, nil
	}
	key := SortKey(strings.ToLower(s))
	for _, k := range sortKeys {
		if k == key {
			return k, nil
		}
	}
	return "", models.ErrInvalidSortKey
}

// Criteria is the user-controlled part of the pipeline. A nil Airlines
// slice allows every airline; an empty non-nil slice allows none.
type Criteria struct {
	Airlines    []string `json:"airlines"`
	BaggageOnly bool     `json:"baggage_only"`
	Sort        SortKey  `json:"sort"`
}

func DefaultCriteria() Criteria {
	return Criteria{Sort: PriceAsc}
}

type Result struct {
	Outbound []models.PricedLine `json:"outbound"`
	Return   []models.PricedLine `json:"return"`
}

// Apply filters, sorts and splits lines by direction. Internal rows are
// listed with the outbound ones. The input slice is not modified.
func Apply(lines []models.PricedLine, c Criteria, outbound *models.PricedLine) Result {
	filtered := applyFilters(lines, c, outbound)
	applySort(filtered, c.Sort)

	result := Result{
		Outbound: make([]models.PricedLine, 0, len(filtered)),
		Return:   make([]models.PricedLine, 0),
	}
	for _, l := range filtered {
		if l.Direction == models.DirectionReturn {
			result.Return = append(result.Return, l)
		} else {
			result.Outbound = append(result.Outbound, l)
		}
	}
	return result
}

func applyFilters(lines []models.PricedLine, c Criteria, outbound *models.PricedLine) []models.PricedLine {
	var allowed map[string]bool
	if c.Airlines != nil {
		allowed = make(map[string]bool, len(c.Airlines))
		for _, a := range c.Airlines {
			allowed[strings.ToLower(strings.TrimSpace(a))] = true
		}
	}

	result := make([]models.PricedLine, 0, len(lines))
	for _, l := range lines {
		if allowed != nil && !allowed[strings.ToLower(l.Airline)] {
			continue
		}
		if outbound != nil && l.Direction == models.DirectionReturn &&
			!strings.EqualFold(l.Airline, outbound.Airline) {
			continue
		}
		if c.BaggageOnly && !l.HasBaggage {
			continue
		}
		result = append(result, l)
	}
	return result
}

func applySort(lines []models.PricedLine, key SortKey) {
	if len(lines) < 2 {
		return
	}

	switch key {
	case PriceDesc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Total > lines[j].Total })
	case DepartureAsc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].DepartureAt.Before(lines[j].DepartureAt) })
	case DepartureDesc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].DepartureAt.After(lines[j].DepartureAt) })
	case ArrivalAsc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].ArrivalAt.Before(lines[j].ArrivalAt) })
	case ArrivalDesc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].ArrivalAt.After(lines[j].ArrivalAt) })
	case DurationAsc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].DurationMinutes < lines[j].DurationMinutes })
	case DurationDesc:
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].DurationMinutes > lines[j].DurationMinutes })
	default:
		// price ascending
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Total < lines[j].Total })
	}
}
