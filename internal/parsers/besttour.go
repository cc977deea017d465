package parsers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Besttour parses besttour.com.tw package pages. Flight details live behind
// the 交通方式 tab, so page preparation clicks it before extraction.
type Besttour struct{}

func (b *Besttour) SourceID() string { return "besttour" }

var besttourTabSelectors = []string{
	"[class*='tab']",
	"button",
	"a",
	"div[role='tab']",
}

// PreparePage scrolls for lazy content, then clicks the transport tab so the
// flight block is present in the page text.
func (b *Besttour) PreparePage(ctx context.Context, page scraper.Page, _ string) error {
	if err := scraper.ScrollPage(ctx, page); err != nil {
		return err
	}
	if clickFirst(ctx, page, besttourTabSelectors, "交通") {
		return page.Wait(ctx, 2*time.Second)
	}
	return nil
}

func (b *Besttour) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(b.SourceID(), url)

	result.Flight = besttourFlights(rawText)
	result.Hotel = besttourHotel(rawText)
	result.Inclusions = besttourInclusions(rawText)
	year, month, haveYM := inferYearMonth(result.Flight.Outbound.Date)
	result.DatePricing = besttourDatePricing(rawText, year, month, haveYM)
	result.PackageType = besttourPackageType(rawText, url)

	return result
}

// besttourFlights finds the 去程/回程 blocks dumped by the transport tab.
func besttourFlights(rawText string) schema.FlightInfo {
	var info schema.FlightInfo
	lines := splitLines(rawText)

	for i, line := range lines {
		if line == "去程" && i+8 < len(lines) {
			info.Outbound = besttourFlightBlock(lines, i)
		} else if line == "回程" && i+8 < len(lines) {
			info.Return = besttourFlightBlock(lines, i)
			break
		}
	}
	return info
}

// besttourFlightBlock parses the fixed block layout after a 去程/回程 marker:
// date, flight number, airline, departure airport, departure time, arrow,
// arrival airport, arrival time — one per line.
func besttourFlightBlock(lines []string, start int) schema.FlightSegment {
	segment := schema.FlightSegment{
		Date:             lineAt(lines, start+1),
		FlightNumber:     lineAt(lines, start+2),
		Airline:          lineAt(lines, start+3),
		DepartureAirport: lineAt(lines, start+4),
		DepartureTime:    lineAt(lines, start+5),
		ArrivalAirport:   lineAt(lines, start+7),
		ArrivalTime:      lineAt(lines, start+8),
	}

	// Airport codes come parenthesized, e.g. "桃園(TPE)".
	if m := airportCodeRe.FindStringSubmatch(segment.DepartureAirport); m != nil {
		segment.DepartureCode = m[1]
	}
	if m := airportCodeRe.FindStringSubmatch(segment.ArrivalAirport); m != nil {
		segment.ArrivalCode = m[1]
	}
	return segment
}

var fullDateRe = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)

// inferYearMonth pulls (year, month) out of date strings like "2026/02/13(五)"
// so day-only calendar cells can be anchored.
func inferYearMonth(date string) (year, month int, ok bool) {
	m := fullDateRe.FindStringSubmatch(date)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	return year, month, true
}

func besttourPackageType(rawText, url string) schema.PackageType {
	switch {
	case containsAny(rawText, "機加酒", "自由行", "機+酒"):
		return schema.PackageFIT
	case containsAny(rawText, "團體", "跟團", "領隊", "導遊"):
		return schema.PackageGroup
	case strings.Contains(url, "flight") || strings.Contains(rawText, "機票"):
		return schema.PackageFlight
	case strings.Contains(url, "hotel") ||
		(strings.Contains(rawText, "飯店") && !strings.Contains(rawText, "機")):
		return schema.PackageHotel
	default:
		return schema.PackageUnknown
	}
}

var (
	hotelMetaRe  = regexp.MustCompile(`^(地區|區域|地址|電話|入住|退房)[:：]`)
	hotelAreaRe  = regexp.MustCompile(`(地區|區域)[:：]\s*(.+)$`)
	transitRe    = regexp.MustCompile(`(?i)(JR|地鐵|捷運|單軌|Monorail|Yurikamome|ゆりかもめ)`)
	transitMinRe = regexp.MustCompile(`(?i)(\d+)\s*(分|分鐘|min)`)
)

// besttourHotel finds a 住宿 heading and takes the next meaningful line as
// the hotel name, plus area labels and transit access lines.
func besttourHotel(rawText string) schema.HotelInfo {
	var hotel schema.HotelInfo
	lines := splitLines(rawText)

	for i, line := range lines {
		if line != "住宿" && line != "飯店" && line != "旅館" && line != "酒店" {
			continue
		}
		for j := i + 1; j < len(lines) && j < i+25; j++ {
			candidate := lines[j]
			if candidate == "" {
				continue
			}
			if candidate == "交通方式" || candidate == "行程內容" ||
				candidate == "出發日期" || candidate == "費用說明" {
				break
			}
			if hotelMetaRe.MatchString(candidate) {
				continue
			}
			if len([]rune(candidate)) >= 4 {
				hotel.Name = candidate
				break
			}
		}
		if hotel.Name != "" {
			break
		}
	}

	for _, line := range lines {
		if m := hotelAreaRe.FindStringSubmatch(line); m != nil {
			hotel.Area = strings.TrimSpace(m[2])
			break
		}
	}

	seen := map[string]bool{}
	for _, line := range lines {
		if !transitRe.MatchString(line) || !transitMinRe.MatchString(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		hotel.Access = append(hotel.Access, line)
		if len(hotel.Access) == 8 {
			break
		}
	}
	return hotel
}

var (
	calendarFullRe = regexp.MustCompile(
		`(\d{4})[/-](\d{1,2})[/-](\d{1,2}).{0,20}?(可售|滿團|候補|額滿|已滿|停售|關團).{0,30}?([0-9]{4,6})`)
	calendarDayRe = regexp.MustCompile(
		`^(\d{1,2})\s*(可售|滿團|候補|額滿|已滿|停售|關團).{0,40}?([0-9]{4,6})`)
	seatsRe = regexp.MustCompile(`可售[:：]?\s*(\d+)`)
)

func calendarAvailability(label string) schema.Availability {
	switch label {
	case "可售", "可報名", "可預訂":
		return schema.Available
	case "滿團", "額滿", "已滿", "停售", "滿員":
		return schema.SoldOut
	default:
		return schema.Limited
	}
}

// besttourDatePricing parses the departure calendar. Lines carrying a full
// date win; otherwise day-of-month cells are anchored to the flight's
// year-month when known.
func besttourDatePricing(rawText string, year, month int, haveYM bool) map[string]schema.DatePricing {
	pricing := map[string]schema.DatePricing{}

	for _, line := range splitLines(rawText) {
		if line == "" {
			continue
		}
		m := calendarFullRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		pricing[isoDate(y, mo, d)] = calendarEntry(line, isoDate(y, mo, d), m[4], m[5])
	}
	if len(pricing) > 0 || !haveYM {
		return pricing
	}

	for _, line := range splitLines(rawText) {
		if line == "" {
			continue
		}
		m := calendarDayRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d, _ := strconv.Atoi(m[1])
		date := isoDate(year, month, d)
		pricing[date] = calendarEntry(line, date, m[2], m[3])
	}
	return pricing
}

func calendarEntry(line, date, label, priceStr string) schema.DatePricing {
	entry := schema.DatePricing{
		Date:         date,
		Price:        schema.Int(amount(priceStr)),
		Availability: calendarAvailability(label),
	}
	if m := seatsRe.FindStringSubmatch(line); m != nil {
		seats, _ := strconv.Atoi(m[1])
		entry.SeatsRemaining = schema.Int(seats)
	}
	return entry
}

func isoDate(y, m, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func besttourInclusions(rawText string) []string {
	var inclusions []string
	text := strings.ReplaceAll(rawText, " ", "")
	if strings.Contains(text, "早餐") &&
		containsAny(text, "含早餐", "包含早餐", "附早餐", "輕食早餐", "簡易早餐") {
		inclusions = append(inclusions, "light_breakfast")
	}
	return inclusions
}
