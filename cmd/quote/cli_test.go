package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rLg1290/7crm-sub003/internal/filter"
	"github.com/rLg1290/7crm-sub003/internal/models"
)

const fixture = `{"data": [
  {"id": 1, "airline": "GOL", "flight_number": "G3 1001", "fare_label": "Light",
   "origin": "GIG", "destination": "GRU", "departure": "10/03/2026 08:00",
   "arrival": "10/03/2026 09:30", "duration": "01:30",
   "adult_fare": {"published": 300}, "child_fare": {"net": 240}, "boarding_tax": 50},
  {"id": 2, "airline": "GOL", "flight_number": "G3 1001", "fare_label": "Plus",
   "origin": "GIG", "destination": "GRU", "departure": "10/03/2026 08:00",
   "arrival": "10/03/2026 09:30", "duration": "01:30",
   "adult_fare": {"published": 400}, "boarding_tax": 50, "checked_baggage": 1},
  {"id": 3, "airline": "AZUL", "flight_number": "AD 4410", "fare_label": "Azul",
   "direction": "volta", "origin": "GRU", "destination": "GIG",
   "departure": "15/03/2026 18:00", "duration": "01:05",
   "adult_fare": {"published": 210}, "boarding_tax": 45}
]}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "response.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCLIApp(&out).Run(append([]string{"quote"}, args...))
	return out.String(), err
}

func TestPrice_JSON(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "price", "--file", path, "--adults", "2", "--markup", "10", "--json")
	require.NoError(t, err)

	var result filter.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Outbound, 2)
	require.Len(t, result.Return, 1)
	assert.InDelta(t, 770.0, result.Outbound[0].Total, 1e-9)
	assert.Equal(t, "Light", result.Outbound[0].FareLabel)
	assert.Equal(t, models.DirectionReturn, result.Return[0].Direction)
}

func TestPrice_Filters(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "price", "-f", path, "--baggage-only", "--json")
	require.NoError(t, err)

	var result filter.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Outbound, 1)
	assert.Equal(t, "Plus", result.Outbound[0].FareLabel)
	assert.Empty(t, result.Return)

	out, err = run(t, "price", "-f", path, "--airlines", "AZUL", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Empty(t, result.Outbound)
	assert.Len(t, result.Return, 1)
}

func TestPrice_Table(t *testing.T) {
	out, err := run(t, "price", "-f", writeFixture(t), "--sort", "price_desc")
	require.NoError(t, err)

	assert.Contains(t, out, "DIRECTION")
	assert.Contains(t, out, "R$ 450,00")
	assert.Contains(t, out, "R$ 255,00")
	assert.Contains(t, out, "G3 1001")
}

func TestPrice_InvalidInput(t *testing.T) {
	path := writeFixture(t)

	_, err := run(t, "price", "-f", path, "--adults", "0")
	assert.ErrorIs(t, err, models.ErrNoAdults)

	_, err = run(t, "price", "-f", path, "--markup", "-5")
	assert.ErrorIs(t, err, models.ErrNegativeMarkup)

	_, err = run(t, "price", "-f", path, "--sort", "cheapest")
	assert.ErrorIs(t, err, models.ErrInvalidSortKey)

	_, err = run(t, "price", "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOffers(t *testing.T) {
	out, err := run(t, "offers", "-f", writeFixture(t))
	require.NoError(t, err)

	var merged []models.Offer
	require.NoError(t, json.Unmarshal([]byte(out), &merged))
	require.Len(t, merged, 2)
	assert.Len(t, merged[0].Variants, 2)
	assert.Equal(t, "AZUL", merged[1].Airline)
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"GOL", "LATAM"}, parseList(" GOL , LATAM ,"))
}
