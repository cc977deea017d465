package parsers

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Settour parses tour.settour.com.tw (東南旅遊) package pages. Details are
// split across tabs, so preparation clicks each one to accumulate text.
type Settour struct{}

func (s *Settour) SourceID() string { return "settour" }

var settourTabs = []string{"航班資訊", "飯店安排", "每日行程", "出發日期"}

func (s *Settour) PreparePage(ctx context.Context, page scraper.Page, _ string) error {
	if err := scraper.ScrollPage(ctx, page); err != nil {
		return err
	}
	for _, tab := range settourTabs {
		if clickFirst(ctx, page, []string{"a", "button", "[class*='tab']"}, tab) {
			if err := page.Wait(ctx, 1500*time.Millisecond); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Settour) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(s.SourceID(), url)

	result.Flight = settourFlights(rawText)
	result.Hotel = settourHotel(rawText)
	result.Price = settourPrice(rawText)
	result.Dates = settourDates(rawText)
	result.Itinerary = parseItinerary(rawText, settourDayMarkerRe, "注意事項", "出團備註")
	result.Inclusions = settourInclusions(rawText)

	return result
}

var (
	settourDayMarkerRe = regexp.MustCompile(`^(?:Day|DAY|第)\s*(\d+)\s*(?:天)?$`)
	flightNumberRe     = regexp.MustCompile(`([A-Z]{2})\s*(\d{2,4})`)
	settourAirlineRe   = regexp.MustCompile(`(中華航空|長榮航空|星宇航空|台灣虎航|樂桃航空|酷航|捷星|亞洲航空)`)
)

// settourFlights prefers the labeled 去程/回程 blocks, falling back to a
// windowed scan around any flight-number-looking token.
func settourFlights(rawText string) schema.FlightInfo {
	var info schema.FlightInfo
	lines := splitLines(rawText)

	for i, line := range lines {
		if line == "去程" && i+8 < len(lines) {
			info.Outbound = settourFlightBlock(lines, i)
		} else if line == "回程" && i+8 < len(lines) {
			info.Return = settourFlightBlock(lines, i)
			break
		}
	}
	if info.Outbound.IsPopulated() {
		return info
	}

	for i, line := range lines {
		m := flightNumberRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		from, to := i-5, i+5
		if from < 0 {
			from = 0
		}
		if to > len(lines) {
			to = len(lines)
		}
		nearby := strings.Join(lines[from:to], "\n")
		airports := knownAirportsRe.FindAllString(nearby, -1)
		times := clockRe.FindAllString(nearby, -1)
		if len(airports) == 0 || len(times) == 0 {
			continue
		}

		var segment schema.FlightSegment
		segment.FlightNumber = m[1] + m[2]
		segment.DepartureCode = airports[0]
		if len(airports) > 1 {
			segment.ArrivalCode = airports[1]
		}
		segment.DepartureTime = times[0]
		if len(times) > 1 {
			segment.ArrivalTime = times[1]
		}

		if !info.Outbound.IsPopulated() {
			info.Outbound = segment
		} else {
			info.Return = segment
		}
		if info.Outbound.IsPopulated() && info.Return.IsPopulated() {
			break
		}
	}
	return info
}

// settourFlightBlock parses loosely: Settour's block layout varies, so it
// regex-scans a 12-line window instead of trusting fixed positions.
func settourFlightBlock(lines []string, start int) schema.FlightSegment {
	end := start + 12
	if end > len(lines) {
		end = len(lines)
	}
	text := strings.Join(lines[start:end], "\n")

	var segment schema.FlightSegment
	if m := fullDateRe.FindStringSubmatch(text); m != nil {
		segment.Date = m[1] + "/" + zeroPad(m[2]) + "/" + zeroPad(m[3])
	}
	if m := flightNumberRe.FindStringSubmatch(text); m != nil {
		segment.FlightNumber = m[1] + m[2]
	}
	airports := knownAirportsRe.FindAllString(text, -1)
	if len(airports) >= 2 {
		segment.DepartureCode = airports[0]
		segment.ArrivalCode = airports[1]
	}
	times := clockRe.FindAllString(text, -1)
	if len(times) >= 2 {
		segment.DepartureTime = times[0]
		segment.ArrivalTime = times[1]
	}
	if m := settourAirlineRe.FindStringSubmatch(text); m != nil {
		segment.Airline = m[1]
	}
	return segment
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

var (
	hotelWordRe      = regexp.MustCompile(`(?i)(Hotel|飯店|酒店|旅館|Inn|Resort)`)
	settourOrSplitRe = regexp.MustCompile(`或\s*同級|或\s*`)
	sameGradeRe      = regexp.MustCompile(`(或同級|同級)`)
)

func settourHotel(rawText string) schema.HotelInfo {
	var hotel schema.HotelInfo
	inSection := false

	for _, line := range splitLines(rawText) {
		if line == "飯店安排" || line == "住宿安排" || line == "住宿" {
			inSection = true
			continue
		}
		if !inSection || line == "" {
			continue
		}
		if line == "每日行程" || line == "航班資訊" || line == "出發日期" ||
			line == "費用說明" || line == "注意事項" {
			break
		}
		if !hotelWordRe.MatchString(line) {
			continue
		}
		for _, name := range settourOrSplitRe.Split(line, -1) {
			clean := strings.TrimSpace(parenRe.ReplaceAllString(name, ""))
			clean = strings.TrimSpace(sameGradeRe.ReplaceAllString(clean, ""))
			if clean != "" && len([]rune(clean)) > 2 {
				hotel.Names = append(hotel.Names, clean)
			}
		}
	}

	if len(hotel.Names) > 0 {
		hotel.Name = hotel.Names[0]
	}
	for _, line := range splitLines(rawText) {
		if m := hotelAreaRe.FindStringSubmatch(line); m != nil {
			hotel.Area = strings.TrimSpace(m[2])
			break
		}
	}
	return hotel
}

var (
	labeledPriceRe  = regexp.MustCompile(`(?:售價|團費|價格)\s*(?:NT)?\$\s*([\d,]+)`)
	anyNTPriceRe    = regexp.MustCompile(`NT?\$\s*([\d,]+)`)
	settourDeposit  = regexp.MustCompile(`訂金\s*(?:NT)?\$\s*([\d,]+)`)
	settourDepartRe = regexp.MustCompile(`出發日期\s*[:：]?\s*(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
)

// settourPrice prefers explicitly labeled amounts, then falls back to the
// cheapest sizeable NT$ figure on the page.
func settourPrice(rawText string) schema.PriceInfo {
	var price schema.PriceInfo

	best := 0
	for _, m := range labeledPriceRe.FindAllStringSubmatch(rawText, -1) {
		if v := amount(m[1]); v > 10000 && (best == 0 || v < best) {
			best = v
		}
	}
	if best == 0 {
		for _, m := range anyNTPriceRe.FindAllStringSubmatch(rawText, -1) {
			if v := amount(m[1]); v > 15000 && (best == 0 || v < best) {
				best = v
			}
		}
	}
	if best > 0 {
		price.PerPerson = schema.Int(best)
		price.Currency = "TWD"
	}

	if m := settourDeposit.FindStringSubmatch(rawText); m != nil {
		price.Deposit = schema.Int(amount(m[1]))
	}
	return price
}

func settourDates(rawText string) schema.DatesInfo {
	var dates schema.DatesInfo

	if m := durationRe.FindStringSubmatch(rawText); m != nil {
		days, _ := strconv.Atoi(m[1])
		nights, _ := strconv.Atoi(m[2])
		dates.DurationDays = schema.Int(days)
		dates.DurationNights = schema.Int(nights)
	}
	if m := settourDepartRe.FindStringSubmatch(rawText); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		dates.Year = schema.Int(year)
		dates.DepartureMonth = schema.Int(month)
		dates.DepartureDay = schema.Int(day)
	}
	return dates
}

func settourInclusions(rawText string) []string {
	var inclusions []string
	text := strings.ReplaceAll(rawText, " ", "")

	if containsAny(text, "含團險", "旅行業責任保險") {
		inclusions = append(inclusions, "travel_insurance")
	}
	if containsAny(text, "含機場稅", "含國內外機場稅", "兩地機場稅") {
		inclusions = append(inclusions, "airport_tax")
	}
	if strings.Contains(text, "早餐") && containsAny(text, "飯店內用", "含早餐", "飯店早餐") {
		inclusions = append(inclusions, "breakfast")
	}
	return inclusions
}
