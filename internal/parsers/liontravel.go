package parsers

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Liontravel parses liontravel.com search and detail pages. Search results
// render late, so preparation just waits the cards out.
type Liontravel struct{}

func (l *Liontravel) SourceID() string { return "liontravel" }

func (l *Liontravel) PreparePage(ctx context.Context, page scraper.Page, _ string) error {
	// The search SPA streams results in well after load.
	return page.Wait(ctx, 8*time.Second)
}

func (l *Liontravel) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	result := schema.NewResult(l.SourceID(), url)

	result.Price = liontravelPrice(rawText)
	result.Dates = liontravelDatesFromURL(url)

	return result
}

var (
	twdAmountRe     = regexp.MustCompile(`TWD\s*([\d,]+)`)
	liontravelTotal = regexp.MustCompile(`總金額[^\d]*TWD\s*([\d,]+)`)
	perPersonRe     = regexp.MustCompile(`TWD\s*([\d,]+)\s*人/起`)
	fromDateParamRe = regexp.MustCompile(`FromDate=(\d{8})`)
	toDateParamRe   = regexp.MustCompile(`ToDate=(\d{8})`)
	daysParamRe     = regexp.MustCompile(`Days=(\d+)`)
)

// liontravelPrice reads labeled detail-page amounts first, then the lowest
// TWD figure above the fee threshold.
func liontravelPrice(rawText string) schema.PriceInfo {
	price := schema.PriceInfo{Currency: "TWD"}

	if m := liontravelTotal.FindStringSubmatch(rawText); m != nil {
		price.Total = schema.Int(amount(m[1]))
	}
	if m := perPersonRe.FindStringSubmatch(rawText); m != nil {
		price.PerPerson = schema.Int(amount(m[1]))
	}
	if price.PerPerson != nil || price.Total != nil {
		return price
	}

	best := 0
	for _, m := range twdAmountRe.FindAllStringSubmatch(rawText, -1) {
		// Small TWD figures on search pages are fees and taxes.
		if v := amount(m[1]); v > 10000 && (best == 0 || v < best) {
			best = v
		}
	}
	if best > 0 {
		price.PerPerson = schema.Int(best)
	}
	return price
}

// liontravelDatesFromURL decodes the FromDate/ToDate/Days query parameters
// Liontravel search URLs carry.
func liontravelDatesFromURL(url string) schema.DatesInfo {
	var dates schema.DatesInfo

	if m := fromDateParamRe.FindStringSubmatch(url); m != nil {
		dates.DepartureDate = compactToISO(m[1])
	}
	if m := toDateParamRe.FindStringSubmatch(url); m != nil {
		dates.ReturnDate = compactToISO(m[1])
	}
	if m := daysParamRe.FindStringSubmatch(url); m != nil {
		days, _ := strconv.Atoi(m[1])
		dates.DurationDays = schema.Int(days)
	}
	return dates
}

// compactToISO turns "20260211" into "2026-02-11".
func compactToISO(d string) string {
	return d[:4] + "-" + d[4:6] + "-" + d[6:8]
}
