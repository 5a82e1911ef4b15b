package pricing

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/pkg/currency"
)

// Quote prices one fare variant for a passenger composition. markupRate is
// a percentage (10 means 10%).
func Quote(v models.FareVariant, pax models.PassengerCounts, markupRate float64) models.PriceBreakdown {
	totalFare := v.Units.Adult*float64(pax.Adults) +
		v.Units.Child*float64(pax.Children) +
		v.Units.Infant*float64(pax.Infants)
	totalTax := v.BoardingTax * float64(pax.Total())
	subtotal := totalFare + totalTax
	markup := subtotal * (markupRate / 100)

	return models.PriceBreakdown{
		Units:        v.Units,
		TaxUnit:      v.BoardingTax,
		Passengers:   pax,
		TotalFare:    totalFare,
		TotalTax:     totalTax,
		Subtotal:     subtotal,
		MarkupRate:   markupRate,
		MarkupAmount: markup,
		Total:        subtotal + markup,
	}
}

// Lines expands every offer and fare variant into a priced row.
func Lines(offers []models.Offer, pax models.PassengerCounts, markupRate float64) []models.PricedLine {
	result := make([]models.PricedLine, 0, len(offers))
	for _, o := range offers {
		for i, v := range o.Variants {
			result = append(result, Line(o, i, v, pax, markupRate))
		}
	}
	return result
}

func Line(o models.Offer, index int, v models.FareVariant, pax models.PassengerCounts, markupRate float64) models.PricedLine {
	breakdown := Quote(v, pax, markupRate)
	source := v.Source

	return models.PricedLine{
		ID:              LineID(v.LegID, v.FareLabel, breakdown.Total, index),
		LegID:           v.LegID,
		VariantIndex:    index,
		Airline:         o.Airline,
		FlightNumber:    o.FlightNumber,
		Origin:          o.Origin,
		Destination:     o.Destination,
		Departure:       o.Departure,
		Arrival:         o.Arrival,
		DepartureAt:     o.DepartureAt,
		ArrivalAt:       o.ArrivalAt,
		Duration:        o.Duration,
		DurationMinutes: o.DurationMinutes,
		Connections:     o.Connections,
		ConnectionLegs:  o.ConnectionLegs,
		FareLabel:       v.FareLabel,
		CheckedBaggage:  v.CheckedBaggage,
		HasBaggage:      v.CheckedBaggage > 0,
		Direction:       o.Direction,
		Breakdown:       breakdown,
		Total:           breakdown.Total,
		TotalFormatted:  currency.FormatBRL(breakdown.Total),
		Source:          &source,
	}
}

// LineID is stable across recomputations with the same inputs.
func LineID(legID models.LegID, fareLabel string, total float64, index int) string {
	return fmt.Sprintf("%s-%s-%.2f-%d", legID, slug(fareLabel), total, index)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('_')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
