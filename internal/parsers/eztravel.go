package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// EzTravel parses flight.eztravel.com.tw flight search results.
type EzTravel struct{}

func (e *EzTravel) SourceID() string { return "eztravel" }

// ezFlight is one flight row from the search results.
type ezFlight struct {
	DepartureTime   string
	ArrivalTime     string
	DurationMinutes int
	Nonstop         bool
	Price           int
	Airline         string
}

func (e *EzTravel) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(e.SourceID(), url)

	flights := parseEzTravelFlights(rawText)
	if len(flights) == 0 {
		return result
	}

	cheapest := flights[0]
	for _, f := range flights[1:] {
		if f.Price > 0 && (cheapest.Price == 0 || f.Price < cheapest.Price) {
			cheapest = f
		}
	}
	if cheapest.Price > 0 {
		result.Price = schema.PriceInfo{
			PerPerson: schema.Int(cheapest.Price),
			Currency:  "TWD",
		}
	}

	// Keep the top rows for inspection; the structured schema only carries
	// the cheapest option.
	limit := len(flights)
	if limit > 10 {
		limit = 10
	}
	rows := make([]string, 0, limit)
	for _, f := range flights[:limit] {
		price := "N/A"
		if f.Price > 0 {
			price = strconv.Itoa(f.Price)
		}
		rows = append(rows, fmt.Sprintf("%s %s→%s TWD %s",
			f.Airline, f.DepartureTime, f.ArrivalTime, price))
	}
	result.ExtractedElements["all_flights"] = rows

	return result
}

var (
	bareClockRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	ezDurationRe  = regexp.MustCompile(`(\d+)h(\d+)min`)
	ezPriceLineRe = regexp.MustCompile(`(?:TWD|NT\$)\s*([\d,]+)`)
)

// parseEzTravelFlights scans for the repeating row layout: departure time,
// duration, 直飛/轉機 flag, arrival time, then price and airline within the
// next few lines. After a row parses, the scan resumes past its arrival
// time so that line doesn't open a phantom row.
func parseEzTravelFlights(rawText string) []ezFlight {
	var flights []ezFlight
	lines := splitLines(rawText)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !bareClockRe.MatchString(line) || i+5 >= len(lines) {
			continue
		}

		flight := ezFlight{
			DepartureTime: line,
			Nonstop:       strings.Contains(lineAt(lines, i+2), "直飛"),
			ArrivalTime:   lineAt(lines, i+3),
			Airline:       "Unknown",
		}
		if m := ezDurationRe.FindStringSubmatch(lineAt(lines, i+1)); m != nil {
			hours, _ := strconv.Atoi(m[1])
			mins, _ := strconv.Atoi(m[2])
			flight.DurationMinutes = hours*60 + mins
		}

		for j := i + 4; j < i+10 && j < len(lines); j++ {
			m := ezPriceLineRe.FindStringSubmatch(lines[j])
			if m == nil {
				continue
			}
			flight.Price = amount(m[1])
			if candidate := lineAt(lines, j+1); candidate != "" && len([]rune(candidate)) < 50 {
				flight.Airline = candidate
			}
			break
		}

		flights = append(flights, flight)
		i += 3
	}
	return flights
}
