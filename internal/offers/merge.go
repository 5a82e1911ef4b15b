package offers

import (
	"sort"
	"strings"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

// Key groups legs on the provider's display strings, so two legs with the
// same instant formatted differently stay separate offers.
func Key(leg models.CanonicalLeg) string {
	r := leg.Raw
	return strings.Join([]string{r.Airline, r.Origin, r.Destination, r.Departure, r.Arrival}, "|")
}

// Merge groups legs into offers. Offers keep first-seen order; variants
// inside each offer are ordered by reference price.
func Merge(legs []models.CanonicalLeg) []models.Offer {
	index := make(map[string]int, len(legs))
	result := make([]models.Offer, 0, len(legs))

	for _, leg := range legs {
		key := Key(leg)
		i, exists := index[key]
		if !exists {
			i = len(result)
			index[key] = i
			result = append(result, newOffer(leg))
		}
		result[i].Variants = append(result[i].Variants, newVariant(leg))
	}

	for i := range result {
		variants := result[i].Variants
		sort.SliceStable(variants, func(a, b int) bool {
			return variants[a].ReferencePrice() < variants[b].ReferencePrice()
		})
	}

	return result
}

// Airlines lists the airlines present in offers, in first-seen order.
func Airlines(offers []models.Offer) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, o := range offers {
		if !seen[o.Airline] {
			seen[o.Airline] = true
			result = append(result, o.Airline)
		}
	}
	return result
}

func newOffer(leg models.CanonicalLeg) models.Offer {
	r := leg.Raw
	return models.Offer{
		Airline:         r.Airline,
		FlightNumber:    r.FlightNumber,
		Origin:          r.Origin,
		Destination:     r.Destination,
		Departure:       r.Departure,
		Arrival:         r.Arrival,
		DepartureAt:     leg.DepartureAt,
		ArrivalAt:       leg.ArrivalAt,
		Duration:        r.Duration,
		DurationMinutes: leg.DurationMinutes,
		Connections:     r.Connections,
		ConnectionLegs:  r.ConnectionLegs,
		Direction:       leg.Direction,
	}
}

func newVariant(leg models.CanonicalLeg) models.FareVariant {
	return models.FareVariant{
		LegID:          leg.Raw.ID,
		FareLabel:      leg.Raw.FareLabel,
		Units:          leg.Units,
		BoardingTax:    leg.Raw.BoardingTax,
		CheckedBaggage: leg.Raw.CheckedBaggage,
		Source:         leg.Raw,
	}
}
