package parsers

import (
	"regexp"
	"strconv"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// Trip parses trip.com flight search results. Trip.com renders prices in
// USD; the cheapest nonstop option becomes the primary flight/price.
type Trip struct{}

func (t *Trip) SourceID() string { return "trip" }

// tripFlight is one nonstop option lifted off the results page.
type tripFlight struct {
	Airline       string
	DepartureTime string
	ArrivalTime   string
	Duration      string
	PerPersonUSD  int
	TotalUSD      int
}

func (t *Trip) ParseRawText(rawText, url string, extras map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(t.SourceID(), url)

	pax := 2
	if v, err := strconv.Atoi(extras["pax"]); err == nil && v > 0 {
		pax = v
	}

	flights := parseTripNonstopFlights(rawText, pax)
	if len(flights) == 0 {
		return result
	}

	cheapest := flights[0]
	for _, f := range flights[1:] {
		if f.TotalUSD < cheapest.TotalUSD {
			cheapest = f
		}
	}

	result.Flight = schema.FlightInfo{
		Outbound: schema.FlightSegment{
			Airline:       cheapest.Airline,
			DepartureTime: cheapest.DepartureTime,
			ArrivalTime:   cheapest.ArrivalTime,
		},
	}
	result.Price = schema.PriceInfo{
		PerPerson: schema.Int(cheapest.PerPersonUSD),
		Total:     schema.Int(cheapest.TotalUSD),
		Currency:  "USD",
	}
	return result
}

var (
	tripTimeRe  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	tripNoiseRe = regexp.MustCompile(`^(Carry-on|Included|Checked|<\d|CO2)`)
	tripPriceRe = regexp.MustCompile(`^US\$(\d[\d,]*)`)
	tripTotalRe = regexp.MustCompile(`^Total US\$(\d[\d,]*)`)
)

// parseTripNonstopFlights walks the results text. A bare HH:MM line opens a
// flight row: the airline sits up to three lines above it, duration two
// below, the nonstop marker three below, and the arrival time four below,
// with prices within the following few lines.
func parseTripNonstopFlights(rawText string, pax int) []tripFlight {
	lines := splitLines(rawText)
	var flights []tripFlight

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !tripTimeRe.MatchString(line) || i+4 >= len(lines) {
			continue
		}

		airline := ""
		for j := max(0, i-3); j < i; j++ {
			candidate := lines[j]
			if candidate != "" && !tripNoiseRe.MatchString(candidate) {
				airline = candidate
			}
		}

		duration := lineAt(lines, i+2)
		nonstop := containsAny(lineAt(lines, i+3), "Nonstop")
		arriveTime := lineAt(lines, i+4)

		perPerson := 0
		for k := i + 4; k < min(i+10, len(lines)); k++ {
			if m := tripPriceRe.FindStringSubmatch(lines[k]); m != nil {
				perPerson = amount(m[1])
				break
			}
		}

		total := 0
		for k := i + 4; k < min(i+12, len(lines)); k++ {
			if m := tripTotalRe.FindStringSubmatch(lines[k]); m != nil {
				total = amount(m[1])
				break
			}
		}

		if perPerson == 0 || !nonstop {
			continue
		}
		if total == 0 {
			total = perPerson * pax
		}
		flights = append(flights, tripFlight{
			Airline:       airline,
			DepartureTime: line,
			ArrivalTime:   arriveTime,
			Duration:      duration,
			PerPersonUSD:  perPerson,
			TotalUSD:      total,
		})
	}
	return flights
}
