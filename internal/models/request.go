package models

import "strings"

const MaxPassengers = 9

type Scope string

const (
	ScopeDomestic      Scope = "domestic"
	ScopeInternational Scope = "international"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(s)) {
	case ScopeDomestic:
		return ScopeDomestic, nil
	case ScopeInternational:
		return ScopeInternational, nil
	}
	return "", ErrInvalidScope
}

func (p PassengerCounts) Total() int {
	return p.Adults + p.Children + p.Infants
}

func (p PassengerCounts) Validate() error {
	if p.Adults < 1 {
		return ErrNoAdults
	}
	if p.Children < 0 || p.Infants < 0 {
		return ErrNegativePassengers
	}
	if p.Total() > MaxPassengers {
		return ErrTooManyPassengers
	}
	return nil
}

func DefaultPassengers() PassengerCounts {
	return PassengerCounts{Adults: 1}
}

type SearchParams struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date"`
	ReturnDate    *string         `json:"return_date,omitempty"`
	Passengers    PassengerCounts `json:"passengers"`
	CabinClass    string          `json:"cabin_class,omitempty"`
}

func (r *SearchParams) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if r.ReturnDate != nil && *r.ReturnDate == "" {
		r.ReturnDate = nil
	}
	if r.Passengers == (PassengerCounts{}) {
		r.Passengers = DefaultPassengers()
	}
	if err := r.Passengers.Validate(); err != nil {
		return err
	}
	if r.CabinClass == "" {
		r.CabinClass = "economy"
	}
	return nil
}

func ValidateMarkupRate(rate float64) error {
	if rate < 0 {
		return ErrNegativeMarkup
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrNoAdults             ValidationError = "at least one adult is required"
	ErrNegativePassengers   ValidationError = "passenger counts cannot be negative"
	ErrTooManyPassengers    ValidationError = "at most 9 passengers per search"
	ErrNegativeMarkup       ValidationError = "markup_rate cannot be negative"
	ErrInvalidScope         ValidationError = "scope must be domestic or international"
	ErrInvalidSortKey       ValidationError = "unknown sort key"
)
