// Package itinerary converts selected rows into the records consumed by
// the quotation screens.
package itinerary

import (
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/selection"
)

func DirectionLabel(d models.Direction) string {
	switch d {
	case models.DirectionReturn:
		return "volta"
	case models.DirectionInternal:
		return "interno"
	default:
		return "ida"
	}
}

func FromLine(line models.PricedLine) models.VooCotacao {
	breakdown := line.Breakdown
	v := models.VooCotacao{
		ID:           line.ID,
		Airline:      line.Airline,
		FlightNumber: line.FlightNumber,
		DepartureAt:  line.DepartureAt,
		ArrivalAt:    line.ArrivalAt,
		Origin:       line.Origin,
		Destination:  line.Destination,
		Duration:     line.Duration,
		FareLabel:    line.FareLabel,
		HasBaggage:   line.HasBaggage,
		Total:        line.Total,
		Direction:    DirectionLabel(line.Direction),
		Breakdown:    &breakdown,
	}
	if len(line.ConnectionLegs) > 0 {
		v.Connections = append([]models.Connection(nil), line.ConnectionLegs...)
	}
	if line.Source != nil {
		src := *line.Source
		v.Source = &src
	}
	return v
}

// FromSelection lists the outbound record first, then the return.
func FromSelection(s selection.State) []models.VooCotacao {
	result := make([]models.VooCotacao, 0, 2)
	if s.Outbound != nil {
		result = append(result, FromLine(*s.Outbound))
	}
	if s.Return != nil {
		result = append(result, FromLine(*s.Return))
	}
	return result
}
