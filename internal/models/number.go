package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// decodeNumber reads a JSON number or a numeric string such as "400.00"
// or "400,00". Anything else counts as absent.
func decodeNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
		if strings.Contains(text, ",") && !strings.Contains(text, ".") {
			text = strings.Replace(text, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON accepts numbers or numeric strings for both amounts. A bare
// number is taken as the published amount.
func (f *Fare) UnmarshalJSON(b []byte) error {
	*f = Fare{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		if v, ok := decodeNumber(b); ok {
			f.Published = &v
		}
		return nil
	}

	var aux struct {
		Published json.RawMessage `json:"published"`
		Net       json.RawMessage `json:"net"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if v, ok := decodeNumber(aux.Published); ok {
		f.Published = &v
	}
	if v, ok := decodeNumber(aux.Net); ok {
		f.Net = &v
	}
	return nil
}

// UnmarshalJSON reads numeric fields leniently. Fields of the wrong type
// are left zero and reported with the first *json.UnmarshalTypeError, but
// every other field is still filled in.
func (l *RawLeg) UnmarshalJSON(b []byte) error {
	type plain RawLeg
	aux := struct {
		*plain
		BoardingTax    json.RawMessage `json:"boarding_tax"`
		Connections    json.RawMessage `json:"connections"`
		CheckedBaggage json.RawMessage `json:"checked_baggage"`
	}{plain: (*plain)(l)}

	err := json.Unmarshal(b, &aux)

	l.BoardingTax, _ = decodeNumber(aux.BoardingTax)
	connections, _ := decodeNumber(aux.Connections)
	l.Connections = int(connections)
	baggage, _ := decodeNumber(aux.CheckedBaggage)
	l.CheckedBaggage = int(baggage)
	return err
}
