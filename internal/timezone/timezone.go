package timezone

import (
	"strconv"
	"strings"
	"time"
)

var (
	FNT *time.Location // UTC-2 - Fernando de Noronha
	BRT *time.Location // UTC-3 - Brasília (most of the country)
	AMT *time.Location // UTC-4 - Amazon
	ACT *time.Location // UTC-5 - Acre
)

func init() {
	FNT = time.FixedZone("FNT", -2*60*60)
	BRT = time.FixedZone("BRT", -3*60*60)
	AMT = time.FixedZone("AMT", -4*60*60)
	ACT = time.FixedZone("ACT", -5*60*60)
}

// ProviderLayout is the date-time layout the search provider emits.
const ProviderLayout = "02/01/2006 15:04"

var airportTimezones = map[string]string{
	// FNT (UTC-2)
	"FEN": "FNT", // Fernando de Noronha

	// AMT (UTC-4) - Amazon
	"MAO": "AMT", // Manaus - Eduardo Gomes
	"PVH": "AMT", // Porto Velho - Governador Jorge Teixeira
	"BVB": "AMT", // Boa Vista - Atlas Brasil Cantanhede
	"CGB": "AMT", // Cuiabá - Marechal Rondon
	"CGR": "AMT", // Campo Grande
	"TBT": "AMT", // Tabatinga

	// ACT (UTC-5) - Acre
	"RBR": "ACT", // Rio Branco - Plácido de Castro
	"CZS": "ACT", // Cruzeiro do Sul
}

func GetTimezoneByAirport(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if tz, ok := airportTimezones[code]; ok {
		return tz
	}
	return "BRT"
}

func GetLocationByAirport(code string) *time.Location {
	switch GetTimezoneByAirport(code) {
	case "FNT":
		return FNT
	case "AMT":
		return AMT
	case "ACT":
		return ACT
	default:
		return BRT
	}
}

// ParseProviderTime parses a DD/MM/YYYY HH:MM string in the local time of
// the given airport. Strings without a time part or date separators fail.
func ParseProviderTime(value, airportCode string) (time.Time, error) {
	value = strings.Join(strings.Fields(value), " ")
	if !strings.Contains(value, "/") || !strings.Contains(value, " ") {
		return time.Time{}, &time.ParseError{
			Layout:  ProviderLayout,
			Value:   value,
			Message: ": missing date or time part",
		}
	}
	return time.ParseInLocation(ProviderLayout, value, GetLocationByAirport(airportCode))
}

// ParseClock converts an HH:MM duration into minutes.
func ParseClock(value string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 {
		return 0, false
	}
	mins, err := strconv.Atoi(mm)
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}
