package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// Lifetour parses tour.lifetour.com.tw package pages.
type Lifetour struct{}

func (l *Lifetour) SourceID() string { return "lifetour" }

func (l *Lifetour) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(l.SourceID(), url)

	result.Flight = lifetourFlights(rawText)
	result.Hotel = lifetourHotel(rawText)
	result.Price = lifetourPrice(rawText)
	result.Dates = lifetourDates(rawText)
	result.Itinerary = parseItinerary(rawText, dayMarkerRe, "出團備註", "看完整資訊")
	result.Inclusions = lifetourInclusions(rawText)
	result.PackageType = lifetourPackageType(rawText)

	return result
}

var (
	lifetourFlightRe = regexp.MustCompile(`(亞洲航空|華航|長榮|星宇|虎航|樂桃|酷航|捷星)([A-Z]{1,2}\d{2,4})`)
	lifetourTimeRe   = regexp.MustCompile(`(\d{2}/\d{2})\([一二三四五六日]\)\s*(\d{1,2}:\d{2})`)
)

// lifetourFlights scans for "airline + flight number" runs like 亞洲航空D7378
// and reconstructs the leg from the dates, times, and airport codes in the
// preceding lines. First hit is outbound, second is the return.
func lifetourFlights(rawText string) schema.FlightInfo {
	var info schema.FlightInfo
	lines := splitLines(rawText)

	for i, line := range lines {
		m := lifetourFlightRe.FindStringSubmatch(line)
		if m == nil || i < 5 {
			continue
		}

		from := i - 8
		if from < 0 {
			from = 0
		}
		prev := strings.Join(lines[from:i+1], "\n")
		times := lifetourTimeRe.FindAllStringSubmatch(prev, -1)
		airports := knownAirportsRe.FindAllString(prev, -1)
		if len(times) < 2 || len(airports) < 2 {
			continue
		}

		segment := schema.FlightSegment{
			Date:          times[0][1],
			DepartureTime: times[0][2],
			ArrivalTime:   times[1][2],
			Airline:       m[1],
			FlightNumber:  m[2],
			DepartureCode: airports[0],
			ArrivalCode:   airports[1],
		}
		if !info.Outbound.IsPopulated() {
			info.Outbound = segment
		} else if !info.Return.IsPopulated() {
			info.Return = segment
		}
	}
	return info
}

var (
	parenRe         = regexp.MustCompile(`\s*\([^)]*\)`)
	lifetourRoomRe  = regexp.MustCompile(`(?i)(SEMI DOUBLE|TWN|TWIN|DBL|DOUBLE|單人房|雙人房)`)
	lifetourBedRe   = regexp.MustCompile(`(?i)床寬(\d+)CM`)
	lifetourOrSplit = regexp.MustCompile(`或\s*`)
)

// lifetourHotel reads the 住宿 section. Lifetour lists candidate hotels on
// one line joined by 或, often with room type and bed width appended.
func lifetourHotel(rawText string) schema.HotelInfo {
	var hotel schema.HotelInfo
	inSection := false

	for _, line := range splitLines(rawText) {
		if line == "住宿" {
			inSection = true
			continue
		}
		if !inSection || line == "" {
			continue
		}

		if strings.Contains(line, "或") &&
			containsAny(line, "酒店", "飯店", "Hotel", "Inn", "GRAND") {
			for _, name := range lifetourOrSplit.Split(line, -1) {
				clean := strings.TrimSpace(parenRe.ReplaceAllString(name, ""))
				if clean != "" && len([]rune(clean)) > 2 && !strings.Contains(clean, "同級") {
					hotel.Names = append(hotel.Names, clean)
				}
			}
			if m := lifetourRoomRe.FindStringSubmatch(line); m != nil {
				hotel.RoomType = m[1]
			}
			if m := lifetourBedRe.FindStringSubmatch(line); m != nil {
				width, _ := strconv.Atoi(m[1])
				hotel.BedWidthCM = schema.Int(width)
			}
			break
		}

		if line == "餐食" || line == "收合景點" || line == "Day" {
			inSection = false
		}
	}

	if len(hotel.Names) > 0 {
		hotel.Name = hotel.Names[0]
	}
	return hotel
}

var (
	ntAmountRe       = regexp.MustCompile(`NT?\$\s*([\d,]+)\s*元?`)
	depositRe        = regexp.MustCompile(`訂金\s*NT?\$\s*([\d,]+)`)
	seatsForSaleRe   = regexp.MustCompile(`可售\s*(\d+)\s*人`)
	minTravelersRe   = regexp.MustCompile(`成行\s*(\d+)\s*人`)
	lifetourPriceMin = 15000
)

// lifetourPrice takes the lowest NT$ amount above the deposit threshold.
func lifetourPrice(rawText string) schema.PriceInfo {
	var price schema.PriceInfo

	best := 0
	for _, m := range ntAmountRe.FindAllStringSubmatch(rawText, -1) {
		if v := amount(m[1]); v > lifetourPriceMin && (best == 0 || v < best) {
			best = v
		}
	}
	if best > 0 {
		price.PerPerson = schema.Int(best)
		price.Currency = "TWD"
	}

	if m := depositRe.FindStringSubmatch(rawText); m != nil {
		price.Deposit = schema.Int(amount(m[1]))
	}
	if m := seatsForSaleRe.FindStringSubmatch(rawText); m != nil {
		seats, _ := strconv.Atoi(m[1])
		price.SeatsAvailable = schema.Int(seats)
	}
	if m := minTravelersRe.FindStringSubmatch(rawText); m != nil {
		n, _ := strconv.Atoi(m[1])
		price.MinTravelers = schema.Int(n)
	}
	return price
}

var (
	yearMonthRe  = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月`)
	departCnRe   = regexp.MustCompile(`出發日期\s*(\d{1,2})月(\d{1,2})日`)
	dayMarkerRe  = regexp.MustCompile(`^Day\s*(\d+)$`)
	freeKeywords = []string{"自由活動", "全日自由", "自由前往"}
	// Guided-day heuristic: named sightseeing spots imply an escorted day.
	guidedKeywords = []string{"奈良", "京都", "嵐山", "伏見", "清水寺"}
)

func lifetourDates(rawText string) schema.DatesInfo {
	var dates schema.DatesInfo

	if m := durationRe.FindStringSubmatch(rawText); m != nil {
		days, _ := strconv.Atoi(m[1])
		nights, _ := strconv.Atoi(m[2])
		dates.DurationDays = schema.Int(days)
		dates.DurationNights = schema.Int(nights)
	}
	if m := yearMonthRe.FindStringSubmatch(rawText); m != nil {
		year, _ := strconv.Atoi(m[1])
		dates.Year = schema.Int(year)
	}
	if m := departCnRe.FindStringSubmatch(rawText); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		dates.DepartureMonth = schema.Int(month)
		dates.DepartureDay = schema.Int(day)
		if dates.Year != nil {
			dates.DepartureDate = fmt.Sprintf("%04d-%02d-%02d", *dates.Year, month, day)
		}
	}
	return dates
}

func lifetourPackageType(rawText string) schema.PackageType {
	switch {
	// 伴自由 and friends are semi-guided with free time; treated as FIT for
	// downstream filtering.
	case containsAny(rawText, "伴自由", "半自由", "半自助"):
		return schema.PackageFIT
	case containsAny(rawText, "自由行", "機加酒", "自由配"):
		return schema.PackageFIT
	case containsAny(rawText, "團體", "跟團", "領隊", "導遊", "迷你小團"):
		return schema.PackageGroup
	default:
		return schema.PackageUnknown
	}
}

func lifetourInclusions(rawText string) []string {
	var inclusions []string
	text := strings.ReplaceAll(rawText, " ", "")

	if strings.Contains(text, "含團險") {
		inclusions = append(inclusions, "travel_insurance")
	}
	if containsAny(text, "含國內外機場稅", "含機場稅") {
		inclusions = append(inclusions, "airport_tax")
	}
	if strings.Contains(text, "早餐") && containsAny(text, "飯店內用", "含早餐") {
		inclusions = append(inclusions, "breakfast")
	}
	return inclusions
}

// parseItinerary collects Day-N blocks until a terminator line. Shared by
// the vendors that publish per-day itineraries.
func parseItinerary(rawText string, marker *regexp.Regexp, terminators ...string) []schema.ItineraryDay {
	var itinerary []schema.ItineraryDay
	currentDay := 0
	var content []string

	flush := func() {
		if currentDay == 0 || len(content) == 0 {
			return
		}
		text := strings.Join(content, " ")
		if len([]rune(text)) > 500 {
			text = string([]rune(text)[:500])
		}
		itinerary = append(itinerary, schema.ItineraryDay{
			Day:      currentDay,
			Content:  text,
			IsFree:   containsAny(text, freeKeywords...),
			IsGuided: containsAny(text, guidedKeywords...),
		})
	}

	for _, line := range splitLines(rawText) {
		if m := marker.FindStringSubmatch(line); m != nil {
			flush()
			currentDay, _ = strconv.Atoi(m[1])
			content = nil
			continue
		}
		if currentDay == 0 {
			continue
		}
		stop := false
		for _, term := range terminators {
			if strings.HasPrefix(line, term) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		content = append(content, line)
	}
	flush()
	return itinerary
}
