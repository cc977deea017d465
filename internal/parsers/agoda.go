package parsers

import (
	"context"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Agoda parses direct agoda.com hotel pages. Search pages return empty
// results for far-future dates, so callers point at hotel URLs, which carry
// the stay dates in their query string.
type Agoda struct{}

func (a *Agoda) SourceID() string { return "agoda" }

// PreparePage waits out the SPA render, then scrolls for lazy content.
// Agoda is heavy; the default settle delay is not enough.
func (a *Agoda) PreparePage(ctx context.Context, page scraper.Page, _ string) error {
	if err := page.Wait(ctx, 10*time.Second); err != nil {
		return err
	}
	return scraper.ScrollPage(ctx, page)
}

func (a *Agoda) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(a.SourceID(), url)
	result.Hotel = agodaHotel(rawText)
	result.Price = agodaPrice(rawText)
	result.Dates = agodaDates(rawText, url)
	return result
}

var (
	agodaEnNameRe  = regexp.MustCompile(`\(([A-Za-z\s&'-]+(?:Hotel|Inn|Resort|Hostel|House|Suites?)[A-Za-z\s&'-]*)\)`)
	agodaZhNameRe  = regexp.MustCompile(`^(.+?)\s*\(`)
	agodaStarRe    = regexp.MustCompile(`獲得(\d)顆星`)
	agodaZhHotelRe = regexp.MustCompile(`(飯店|酒店|旅館|民宿|青旅)`)
	agodaAreaRe    = regexp.MustCompile(`(心齋橋|難波|梅田|日本橋|天王寺|新宿|池袋|澀谷|淺草|銀座|上野)`)
)

// Section headers that also contain hotel-ish words; never hotel names.
var agodaHeaders = []string{"簡介", "旅遊好去處", "設施與服務", "住宿評鑑", "地點", "政策"}

var agodaAmenities = []string{
	"免費Wi-Fi", "WiFi", "游泳池", "健身房", "停車場", "機場接駁",
	"早餐", "餐廳", "溫泉", "大浴場", "洗衣", "行李寄存",
}

func agodaHotel(rawText string) schema.HotelInfo {
	var hotel schema.HotelInfo

	var lines []string
	for _, l := range strings.Split(rawText, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	// The English name in parentheses is the most reliable marker; the
	// Chinese name precedes it on the same line.
	for _, line := range lines {
		m := agodaEnNameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		enName := strings.TrimSpace(m[1])
		hotel.Names = append(hotel.Names, enName)
		if zh := agodaZhNameRe.FindStringSubmatch(line); zh != nil {
			zhName := strings.TrimSpace(zh[1])
			hotel.Name = zhName
			hotel.Names = append([]string{zhName}, hotel.Names...)
		} else {
			hotel.Name = enName
		}
		break
	}

	for _, line := range lines {
		if m := agodaStarRe.FindStringSubmatch(line); m != nil {
			hotel.StarRating = schema.Int(amount(m[1]))
			break
		}
	}

	if hotel.Name == "" {
		for _, line := range lines {
			if agodaZhHotelRe.MatchString(line) && len([]rune(line)) > 4 && !slices.Contains(agodaHeaders, line) {
				hotel.Name = line
				break
			}
		}
	}

	for _, line := range lines {
		if agodaAreaRe.MatchString(line) {
			hotel.Area = truncateRunes(line, 100)
			break
		}
	}

	for _, kw := range agodaAmenities {
		if strings.Contains(rawText, kw) {
			hotel.Amenities = append(hotel.Amenities, kw)
		}
	}

	return hotel
}

var (
	agodaNTRe  = regexp.MustCompile(`NT\$\s*([\d,]+)`)
	agodaTWDRe = regexp.MustCompile(`TWD\s*([\d,]+)`)
)

// agodaPrice picks the cheapest room rate off the page. Small numbers are
// review counts and ratings, not rates, so anything at 500 or below is
// dropped.
func agodaPrice(rawText string) schema.PriceInfo {
	price := schema.PriceInfo{Currency: "TWD"}

	matches := agodaNTRe.FindAllStringSubmatch(rawText, -1)
	if len(matches) == 0 {
		matches = agodaTWDRe.FindAllStringSubmatch(rawText, -1)
	}
	if len(matches) == 0 {
		return price
	}

	seen := make(map[int]bool)
	var prices []int
	for _, m := range matches {
		n := amount(m[1])
		if n > 500 && !seen[n] {
			seen[n] = true
			prices = append(prices, n)
		}
	}
	if len(prices) > 0 {
		sort.Ints(prices)
		price.PerPerson = schema.Int(prices[0])
	}

	return price
}

var (
	agodaCheckInRe  = regexp.MustCompile(`checkIn=(\d{4}-\d{2}-\d{2})`)
	agodaCheckOutRe = regexp.MustCompile(`checkOut=(\d{4}-\d{2}-\d{2})`)
	agodaLosRe      = regexp.MustCompile(`los=(\d+)`)
	agodaNightsRe   = regexp.MustCompile(`(\d+)\s*晚`)
)

// agodaDates reads the stay window off the URL query string, with the page
// text as a fallback for the night count.
func agodaDates(rawText, url string) schema.DatesInfo {
	var dates schema.DatesInfo

	if m := agodaCheckInRe.FindStringSubmatch(url); m != nil {
		dates.DepartureDate = m[1]
	}
	if m := agodaCheckOutRe.FindStringSubmatch(url); m != nil {
		dates.ReturnDate = m[1]
	}
	if m := agodaLosRe.FindStringSubmatch(url); m != nil {
		dates.DurationNights = schema.Int(amount(m[1]))
	}
	if dates.DurationNights == nil {
		if m := agodaNightsRe.FindStringSubmatch(rawText); m != nil {
			dates.DurationNights = schema.Int(amount(m[1]))
		}
	}

	return dates
}

// truncateRunes trims s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
