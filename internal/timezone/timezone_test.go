package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimezoneByAirport(t *testing.T) {
	assert.Equal(t, "BRT", GetTimezoneByAirport("gru"))
	assert.Equal(t, "AMT", GetTimezoneByAirport("MAO"))
	assert.Equal(t, "ACT", GetTimezoneByAirport("RBR"))
	assert.Equal(t, "FNT", GetTimezoneByAirport("FEN"))
	assert.Equal(t, "BRT", GetTimezoneByAirport("LIS"))
}

func TestParseProviderTime(t *testing.T) {
	got, err := ParseProviderTime("10/03/2026 08:00", "GIG")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)))

	got, err = ParseProviderTime("10/03/2026  08:00", "MAO")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)))
}

func TestParseProviderTime_Malformed(t *testing.T) {
	for _, value := range []string{"", "10/03/2026", "2026-03-10 08:00", "10/03/2026 8h", "31/02/2026 08:00"} {
		_, err := ParseProviderTime(value, "GRU")
		assert.Error(t, err, value)
	}
}

func TestParseClock(t *testing.T) {
	mins, ok := ParseClock("01:30")
	assert.True(t, ok)
	assert.Equal(t, 90, mins)

	mins, ok = ParseClock("12:05")
	assert.True(t, ok)
	assert.Equal(t, 725, mins)

	for _, value := range []string{"", "90", "1:75", "aa:10", "-1:00"} {
		_, ok := ParseClock(value)
		assert.False(t, ok, value)
	}
}
