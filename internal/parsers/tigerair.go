package parsers

import (
	"regexp"
	"strconv"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// Tigerair parses booking.tigerairtw.com flight search results. The results
// page lists several IT flights; the cheapest one becomes the primary
// flight/price on the result.
type Tigerair struct{}

func (t *Tigerair) SourceID() string { return "tigerair" }

// tigerairFlight is one flight option lifted off the results page.
type tigerairFlight struct {
	FlightNumber    string
	DepartureTime   string
	ArrivalTime     string
	Price           int
	DurationMinutes int
}

func (t *Tigerair) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(t.SourceID(), url)

	flights := parseTigerairFlights(rawText)
	cheapest := cheapestTigerairFlight(flights)
	if cheapest == nil {
		return result
	}

	result.Flight = schema.FlightInfo{
		Outbound: schema.FlightSegment{
			FlightNumber:  cheapest.FlightNumber,
			DepartureTime: cheapest.DepartureTime,
			ArrivalTime:   cheapest.ArrivalTime,
			Airline:       "台灣虎航",
			AirlineCode:   "IT",
		},
	}
	result.Price = schema.PriceInfo{
		PerPerson: schema.Int(cheapest.Price),
		Currency:  "TWD",
	}
	return result
}

var (
	tigerairNumberRe = regexp.MustCompile(`\b(IT\s*\d{3,4})\b`)
	tigerairPriceRe  = regexp.MustCompile(`(?:TWD|NT\$?)\s*([\d,]+)`)
	tigerairDurRe    = regexp.MustCompile(`(\d+)\s*(?:小時|[hH])\s*(\d+)?\s*(?:分鐘|[mM分])?`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// parseTigerairFlights walks the results text line by line, opening a new
// flight on every IT flight number and attaching the times, price, and
// duration that follow it.
func parseTigerairFlights(rawText string) []tigerairFlight {
	var flights []tigerairFlight
	var current tigerairFlight

	for _, line := range splitLines(rawText) {
		if line == "" {
			continue
		}

		if m := tigerairNumberRe.FindStringSubmatch(line); m != nil {
			if current.FlightNumber != "" {
				flights = append(flights, current)
				current = tigerairFlight{}
			}
			current.FlightNumber = spaceRe.ReplaceAllString(m[1], "")
		}
		if current.FlightNumber == "" {
			continue
		}

		times := clockRe.FindAllString(line, -1)
		switch {
		case len(times) >= 2 && current.DepartureTime == "":
			current.DepartureTime = times[0]
			current.ArrivalTime = times[1]
		case len(times) == 1 && current.DepartureTime == "":
			current.DepartureTime = times[0]
		case len(times) == 1 && current.ArrivalTime == "":
			current.ArrivalTime = times[0]
		}

		if m := tigerairPriceRe.FindStringSubmatch(line); m != nil {
			// Figures at or below 500 are seat fees and add-ons.
			if price := amount(m[1]); price > 500 &&
				(current.Price == 0 || price < current.Price) {
				current.Price = price
			}
		}

		if m := tigerairDurRe.FindStringSubmatch(line); m != nil {
			hours, _ := strconv.Atoi(m[1])
			mins := 0
			if m[2] != "" {
				mins, _ = strconv.Atoi(m[2])
			}
			current.DurationMinutes = hours*60 + mins
		}
	}
	if current.FlightNumber != "" {
		flights = append(flights, current)
	}
	return flights
}

func cheapestTigerairFlight(flights []tigerairFlight) *tigerairFlight {
	var best *tigerairFlight
	for i := range flights {
		f := &flights[i]
		if f.Price == 0 {
			continue
		}
		if best == nil || f.Price < best.Price {
			best = f
		}
	}
	return best
}
