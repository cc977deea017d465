package parsers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// GoogleFlights parses Google Flights search results rendered for the
// natural-language query URL (?q=Flights to KIX from TPE on ...). Results
// render without form interaction, so preparation is just wait-and-scroll.
type GoogleFlights struct{}

func (g *GoogleFlights) SourceID() string { return "google_flights" }

// PreparePage gives the results list time to render, then scrolls for any
// lazy-loaded rows.
func (g *GoogleFlights) PreparePage(ctx context.Context, page scraper.Page, _ string) error {
	if err := page.Wait(ctx, 5*time.Second); err != nil {
		return err
	}
	return scraper.ScrollPage(ctx, page)
}

// Airline names as Google renders them in zh-TW, mapped to IATA codes.
// Longer names sit before their prefixes (亞洲航空 X before 亞洲航空).
var googleAirlineCodes = []struct {
	Name string
	Code string
}{
	{"捷星日本航空", "GK"},
	{"捷星航空", "JQ"},
	{"樂桃航空", "MM"},
	{"亞洲航空 X", "D7"},
	{"亞洲航空", "AK"},
	{"長榮航空", "BR"},
	{"全日空航空", "NH"},
	{"中華航空", "CI"},
	{"日本航空", "JL"},
	{"星宇航空", "JX"},
	{"台灣虎航", "IT"},
	{"酷航", "TR"},
	{"泰越捷航空", "VZ"},
	{"泰國獅航", "SL"},
	{"國泰航空", "CX"},
	{"華信航空", "AE"},
}

type googleFlight struct {
	Airline       string
	AirlineCode   string
	DepartureTime string
	ArrivalTime   string
	DepartureCode string
	ArrivalCode   string
	Duration      string
	Nonstop       bool
	Price         int
}

func (g *GoogleFlights) ParseRawText(rawText, url string, extras map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(g.SourceID(), url)

	flights := parseGoogleFlightResults(rawText)
	if len(flights) == 0 {
		return result
	}

	currency := extras["currency"]
	if currency == "" {
		currency = "TWD"
	}

	cheapest := flights[0]
	result.Flight = schema.FlightInfo{
		Outbound: schema.FlightSegment{
			Airline:       cheapest.Airline,
			AirlineCode:   cheapest.AirlineCode,
			DepartureTime: cheapest.DepartureTime,
			ArrivalTime:   cheapest.ArrivalTime,
			DepartureCode: cheapest.DepartureCode,
			ArrivalCode:   cheapest.ArrivalCode,
		},
	}
	result.Price = schema.PriceInfo{Currency: currency}
	if cheapest.Price > 0 {
		result.Price.PerPerson = schema.Int(cheapest.Price)
	}

	all := make([]string, 0, len(flights))
	for _, f := range flights {
		stops := "轉機"
		if f.Nonstop {
			stops = "直達"
		}
		price := "?"
		if f.Price > 0 {
			price = fmt.Sprintf("%d", f.Price)
		}
		all = append(all, fmt.Sprintf("%s %s→%s %s %s $%s",
			f.Airline, f.DepartureTime, f.ArrivalTime, f.Duration, stops, price))
	}
	result.ExtractedElements["all_flights"] = all

	return result
}

var (
	googleDepRe   = regexp.MustCompile(`^(?:凌晨|清晨|上午|中午|下午|晚上)?(\d{1,2}:\d{2})$`)
	googleArrRe   = regexp.MustCompile(`^(?:凌晨|清晨|上午|中午|下午|晚上)?(\d{1,2}:\d{2})(?:\+\d)?$`)
	googleRouteRe = regexp.MustCompile(`^([A-Z]{3})[–\-]([A-Z]{3})`)
	googlePriceRe = regexp.MustCompile(`^\$?([\d,]+)$`)
)

// parseGoogleFlightResults walks the zh-TW results text. Each option reads
//
//	凌晨2:30
//	–
//	清晨6:00
//	捷星日本航空
//	2 小時 30 分鐘
//	TPE–KIX
//	直達
//	...
//	$12,528
//
// Returned flights are sorted cheapest first, price-less options last.
func parseGoogleFlightResults(rawText string) []googleFlight {
	var lines []string
	for _, l := range strings.Split(rawText, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var flights []googleFlight
	for i := 0; i < len(lines); i++ {
		dep := googleDepRe.FindStringSubmatch(lines[i])
		if dep == nil || i+8 >= len(lines) {
			continue
		}

		j := i + 1
		for j < min(i+3, len(lines)) && (lines[j] == "–" || lines[j] == "-" || lines[j] == "—") {
			j++
		}
		arr := googleArrRe.FindStringSubmatch(lineAt(lines, j))
		if arr == nil {
			continue
		}
		j++

		airline := lineAt(lines, j)
		j++
		duration := lineAt(lines, j)
		j++

		route := googleRouteRe.FindStringSubmatch(lineAt(lines, j))
		j++
		depCode, arrCode := "", ""
		if route != nil {
			depCode, arrCode = route[1], route[2]
		}

		nonstop := lineAt(lines, j) == "直達"
		j++

		price := 0
		for k := j; k < min(j+6, len(lines)); k++ {
			if m := googlePriceRe.FindStringSubmatch(lines[k]); m != nil {
				price = amount(m[1])
				break
			}
		}

		code := ""
		for _, a := range googleAirlineCodes {
			if strings.Contains(airline, a.Name) {
				code = a.Code
				break
			}
		}

		flights = append(flights, googleFlight{
			Airline:       airline,
			AirlineCode:   code,
			DepartureTime: dep[1],
			ArrivalTime:   arr[1],
			DepartureCode: depCode,
			ArrivalCode:   arrCode,
			Duration:      duration,
			Nonstop:       nonstop,
			Price:         price,
		})
		i = j - 1
	}

	sort.SliceStable(flights, func(a, b int) bool {
		pa, pb := flights[a].Price, flights[b].Price
		if pa == 0 {
			return false
		}
		if pb == 0 {
			return true
		}
		return pa < pb
	})
	return flights
}
