package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionReturn   Direction = "return"
	DirectionInternal Direction = "internal"
)

// ParseDirection maps a provider direction tag onto a Direction.
// Unknown tags are treated as outbound.
func ParseDirection(tag string) Direction {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "volta", "return", "inbound":
		return DirectionReturn
	case "interno", "internal":
		return DirectionInternal
	default:
		return DirectionOutbound
	}
}

// LegID accepts string ids as they are and keeps any other JSON value
// (numbers, booleans) as its literal text.
type LegID string

func (id *LegID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = LegID(s)
		return nil
	}
	*id = LegID(b)
	return nil
}

type Connection struct {
	Airport      string `json:"airport"`
	FlightNumber string `json:"flight_number,omitempty"`
	Departure    string `json:"departure,omitempty"`
	Arrival      string `json:"arrival,omitempty"`
	Layover      string `json:"layover,omitempty"`
}

// Fare holds the published and net amounts for one passenger type.
type Fare struct {
	Published *float64 `json:"published,omitempty"`
	Net       *float64 `json:"net,omitempty"`
}

// Amount prefers a positive published value, then a positive net value,
// then zero.
func (f Fare) Amount() float64 {
	if f.Published != nil && *f.Published > 0 {
		return *f.Published
	}
	if f.Net != nil && *f.Net > 0 {
		return *f.Net
	}
	return 0
}

type RawLeg struct {
	ID             LegID        `json:"id"`
	Airline        string       `json:"airline"`
	FlightNumber   string       `json:"flight_number"`
	FareLabel      string       `json:"fare_label"`
	Direction      string       `json:"direction"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	Departure      string       `json:"departure"`
	Arrival        string       `json:"arrival"`
	Duration       string       `json:"duration"`
	Connections    int          `json:"connections"`
	ConnectionLegs []Connection `json:"connection_details,omitempty"`
	AdultFare      Fare         `json:"adult_fare"`
	ChildFare      Fare         `json:"child_fare"`
	InfantFare     Fare         `json:"infant_fare"`
	BoardingTax    float64      `json:"boarding_tax"`
	CheckedBaggage int          `json:"checked_baggage"`
}

type UnitPrices struct {
	Adult  float64 `json:"adult"`
	Child  float64 `json:"child"`
	Infant float64 `json:"infant"`
}

type CanonicalLeg struct {
	Raw             RawLeg     `json:"raw"`
	Direction       Direction  `json:"direction"`
	DepartureAt     time.Time  `json:"departure_at"`
	ArrivalAt       time.Time  `json:"arrival_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Units           UnitPrices `json:"units"`
}
