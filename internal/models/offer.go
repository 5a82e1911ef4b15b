package models

import "time"

type FareVariant struct {
	LegID          LegID      `json:"leg_id"`
	FareLabel      string     `json:"fare_label"`
	Units          UnitPrices `json:"units"`
	BoardingTax    float64    `json:"boarding_tax"`
	CheckedBaggage int        `json:"checked_baggage"`
	Source         RawLeg     `json:"source"`
}

// ReferencePrice orders variants inside an offer.
func (v FareVariant) ReferencePrice() float64 {
	return v.Units.Adult + v.BoardingTax
}

type Offer struct {
	Airline         string        `json:"airline"`
	FlightNumber    string        `json:"flight_number"`
	Origin          string        `json:"origin"`
	Destination     string        `json:"destination"`
	Departure       string        `json:"departure"`
	Arrival         string        `json:"arrival"`
	DepartureAt     time.Time     `json:"departure_at"`
	ArrivalAt       time.Time     `json:"arrival_at"`
	Duration        string        `json:"duration"`
	DurationMinutes int           `json:"duration_minutes"`
	Connections     int           `json:"connections"`
	ConnectionLegs  []Connection  `json:"connection_details,omitempty"`
	Direction       Direction     `json:"direction"`
	Variants        []FareVariant `json:"variants"`
}

type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type PriceBreakdown struct {
	Units        UnitPrices      `json:"units"`
	TaxUnit      float64         `json:"tax_unit"`
	Passengers   PassengerCounts `json:"passengers"`
	TotalFare    float64         `json:"total_fare"`
	TotalTax     float64         `json:"total_tax"`
	Subtotal     float64         `json:"subtotal"`
	MarkupRate   float64         `json:"markup_rate"`
	MarkupAmount float64         `json:"markup_amount"`
	Total        float64         `json:"total"`
}

type PricedLine struct {
	ID              string         `json:"id"`
	LegID           LegID          `json:"leg_id"`
	VariantIndex    int            `json:"variant_index"`
	Airline         string         `json:"airline"`
	FlightNumber    string         `json:"flight_number"`
	Origin          string         `json:"origin"`
	Destination     string         `json:"destination"`
	Departure       string         `json:"departure"`
	Arrival         string         `json:"arrival"`
	DepartureAt     time.Time      `json:"departure_at"`
	ArrivalAt       time.Time      `json:"arrival_at"`
	Duration        string         `json:"duration"`
	DurationMinutes int            `json:"duration_minutes"`
	Connections     int            `json:"connections"`
	ConnectionLegs  []Connection   `json:"connection_details,omitempty"`
	FareLabel       string         `json:"fare_label"`
	CheckedBaggage  int            `json:"checked_baggage"`
	HasBaggage      bool           `json:"has_baggage"`
	Direction       Direction      `json:"direction"`
	Breakdown       PriceBreakdown `json:"breakdown"`
	Total           float64        `json:"total"`
	TotalFormatted  string         `json:"total_formatted"`
	Source          *RawLeg        `json:"source,omitempty"`
}
