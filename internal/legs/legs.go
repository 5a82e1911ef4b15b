// Package legs turns the provider's leg records into canonical legs.
package legs

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/timezone"
)

var ErrUnexpectedShape = errors.New("provider response is neither a leg array nor a data envelope")

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// ParseResponse decodes a provider body that is either a JSON array of legs
// or an object of the form {"data": [...]}.
func ParseResponse(body []byte) ([]models.CanonicalLeg, error) {
	raw, err := decodeLegs(body)
	if err != nil {
		return nil, err
	}

	result := make([]models.CanonicalLeg, 0, len(raw))
	for _, leg := range raw {
		result = append(result, Normalize(leg))
	}
	return result, nil
}

func decodeLegs(body []byte) ([]models.RawLeg, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrUnexpectedShape
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, errors.Join(ErrUnexpectedShape, err)
		}
		return decodeItems(items), nil
	case '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, errors.Join(ErrUnexpectedShape, err)
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || data[0] != '[' {
			return nil, ErrUnexpectedShape
		}
		return decodeLegs(data)
	default:
		return nil, ErrUnexpectedShape
	}
}

// decodeItems decodes each leg on its own. A leg with fields of the wrong
// type is kept with whatever did decode; null entries are skipped.
func decodeItems(items []json.RawMessage) []models.RawLeg {
	legs := make([]models.RawLeg, 0, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var leg models.RawLeg
		if err := json.Unmarshal(item, &leg); err != nil {
			log.Warn().Err(err).Int("index", i).Str("leg_id", string(leg.ID)).
				Msg("leg decoded partially")
		}
		legs = append(legs, leg)
	}
	return legs
}

// Normalize never fails: unparseable times degrade along the fallback
// chain parsed arrival -> departure + duration -> departure.
func Normalize(raw models.RawLeg) models.CanonicalLeg {
	durationMinutes, durationOK := timezone.ParseClock(raw.Duration)

	departure, depErr := timezone.ParseProviderTime(raw.Departure, raw.Origin)
	arrival, arrErr := timezone.ParseProviderTime(raw.Arrival, raw.Destination)

	switch {
	case depErr == nil && arrErr == nil:
	case depErr == nil && durationOK:
		arrival = departure.Add(time.Duration(durationMinutes) * time.Minute)
	default:
		arrival = departure
	}

	return models.CanonicalLeg{
		Raw:             raw,
		Direction:       models.ParseDirection(raw.Direction),
		DepartureAt:     departure,
		ArrivalAt:       arrival,
		DurationMinutes: durationMinutes,
		Units: models.UnitPrices{
			Adult:  raw.AdultFare.Amount(),
			Child:  raw.ChildFare.Amount(),
			Infant: raw.InfantFare.Amount(),
		},
	}
}
