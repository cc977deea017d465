package schema

import (
	"fmt"
	"sort"
)

// Default sanity floors for price validation, in source currency units.
// Kept configurable because the thresholds are heuristic, not semantic.
const (
	DefaultMinPerPerson = 5000
	DefaultMinDatePrice = 1000
)

// Validator checks a result for gaps and suspicious values. Validation is
// advisory: it annotates, it never blocks producing a result.
type Validator struct {
	// MinPerPerson flags per-person prices below this floor.
	MinPerPerson int
	// MinDatePrice flags per-date calendar prices below this floor.
	MinDatePrice int
}

// NewValidator returns a validator with the default price floors.
func NewValidator() Validator {
	return Validator{
		MinPerPerson: DefaultMinPerPerson,
		MinDatePrice: DefaultMinDatePrice,
	}
}

// Validate returns one warning per missing or suspicious field. Scraping is
// inherently lossy, so gaps are reported rather than failed on.
func (v Validator) Validate(r *ScrapeResult) []string {
	var warnings []string

	if r.SourceID == "" {
		warnings = append(warnings, "Missing source_id")
	}
	if r.URL == "" {
		warnings = append(warnings, "Missing url")
	}
	if r.ScrapedAt == "" {
		warnings = append(warnings, "Missing scraped_at timestamp")
	}
	if r.Title == "" {
		warnings = append(warnings, "Missing page title")
	}

	if !r.Flight.IsPopulated() {
		warnings = append(warnings, "No flight data extracted")
	} else {
		if r.Flight.Outbound.IsPopulated() && r.Flight.Outbound.Date == "" {
			warnings = append(warnings, "Outbound flight missing date")
		}
		if r.Flight.Return.IsPopulated() && r.Flight.Return.Date == "" {
			warnings = append(warnings, "Return flight missing date")
		}
	}

	if !r.Hotel.IsPopulated() {
		warnings = append(warnings, "No hotel data extracted")
	}

	if !r.Price.IsPopulated() {
		warnings = append(warnings, "No price data extracted")
	} else if *r.Price.PerPerson < v.MinPerPerson {
		warnings = append(warnings, fmt.Sprintf("Price suspiciously low: %d", *r.Price.PerPerson))
	}

	// Deterministic order for the per-date checks.
	dates := make([]string, 0, len(r.DatePricing))
	for date := range r.DatePricing {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		dp := r.DatePricing[date]
		if dp.Price != nil && *dp.Price < v.MinDatePrice {
			warnings = append(warnings, fmt.Sprintf("Date pricing for %s suspiciously low: %d", date, *dp.Price))
		}
	}

	return warnings
}

// Validate checks a result with the default validator.
func Validate(r *ScrapeResult) []string {
	return NewValidator().Validate(r)
}
