package schema

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// UnmarshalJSON accepts the return leg under either "return" (current) or
// "return_" (historical reserved-word workaround).
func (f *FlightInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Outbound     FlightSegment  `json:"outbound"`
		Return       *FlightSegment `json:"return"`
		ReturnLegacy *FlightSegment `json:"return_"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Outbound = raw.Outbound
	switch {
	case raw.Return != nil:
		f.Return = *raw.Return
	case raw.ReturnLegacy != nil:
		f.Return = *raw.ReturnLegacy
	default:
		f.Return = FlightSegment{}
	}
	return nil
}

// Encode serializes the result in the current shape: direct top-level
// fields, defaults preserved, return leg under "return".
func (r *ScrapeResult) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "schema: encode result")
	}
	return data, nil
}

// legacyExtracted is the nested payload of the legacy shape.
type legacyExtracted struct {
	Flight      *FlightInfo            `json:"flight,omitempty"`
	Hotel       *HotelInfo             `json:"hotel,omitempty"`
	Price       map[string]any         `json:"price,omitempty"`
	Dates       map[string]any         `json:"dates,omitempty"`
	Inclusions  []string               `json:"inclusions"`
	DatePricing map[string]map[string]any `json:"date_pricing"`
	Itinerary   []ItineraryDay         `json:"itinerary,omitempty"`
}

// EncodeLegacy serializes the result in the legacy nested shape kept for
// existing consumers. Price, dates, and per-date pricing entries are sparse:
// unset numeric and empty string fields are dropped.
func (r *ScrapeResult) EncodeLegacy() ([]byte, error) {
	extracted := legacyExtracted{
		Flight:      &r.Flight,
		Hotel:       &r.Hotel,
		Price:       sparsePrice(r.Price),
		Dates:       sparseDates(r.Dates),
		Inclusions:  r.Inclusions,
		DatePricing: map[string]map[string]any{},
	}
	for date, dp := range r.DatePricing {
		extracted.DatePricing[date] = sparseDatePricing(dp)
	}
	if len(r.Itinerary) > 0 {
		extracted.Itinerary = r.Itinerary
	}

	doc := map[string]any{
		"source_id":          r.SourceID,
		"package_type":       r.PackageType,
		"url":                r.URL,
		"scraped_at":         r.ScrapedAt,
		"title":              r.Title,
		"raw_text":           r.RawText,
		"extracted":          extracted,
		"extracted_elements": r.ExtractedElements,
	}
	if len(r.PackageLinks) > 0 {
		doc["package_links"] = r.PackageLinks
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "schema: encode legacy result")
	}
	return data, nil
}

func sparsePrice(p PriceInfo) map[string]any {
	m := map[string]any{"currency": p.Currency}
	putInt(m, "per_person", p.PerPerson)
	putInt(m, "total", p.Total)
	putInt(m, "deposit", p.Deposit)
	putInt(m, "seats_available", p.SeatsAvailable)
	putInt(m, "min_travelers", p.MinTravelers)
	return m
}

func sparseDates(d DatesInfo) map[string]any {
	m := map[string]any{
		"departure_date": d.DepartureDate,
		"return_date":    d.ReturnDate,
	}
	putInt(m, "duration_days", d.DurationDays)
	putInt(m, "duration_nights", d.DurationNights)
	putInt(m, "year", d.Year)
	putInt(m, "departure_month", d.DepartureMonth)
	putInt(m, "departure_day", d.DepartureDay)
	return m
}

func sparseDatePricing(dp DatePricing) map[string]any {
	m := map[string]any{}
	putInt(m, "price", dp.Price)
	if dp.Availability != "" {
		m["availability"] = dp.Availability
	}
	putInt(m, "seats_remaining", dp.SeatsRemaining)
	if dp.Notes != "" {
		m["notes"] = dp.Notes
	}
	return m
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

// legacyEnvelope mirrors the legacy top level for decoding.
type legacyEnvelope struct {
	SourceID          string              `json:"source_id"`
	Source            string              `json:"source"`
	PackageType       PackageType         `json:"package_type"`
	URL               string              `json:"url"`
	ScrapedAt         string              `json:"scraped_at"`
	Title             string              `json:"title"`
	RawText           string              `json:"raw_text"`
	Extracted         legacyExtractedIn   `json:"extracted"`
	ExtractedElements map[string][]string `json:"extracted_elements"`
	PackageLinks      []PackageLink       `json:"package_links"`
	Success           *bool               `json:"success"`
	Errors            []string            `json:"errors"`
	Warnings          []string            `json:"warnings"`
}

type legacyExtractedIn struct {
	Flight      *FlightInfo            `json:"flight"`
	Hotel       *HotelInfo             `json:"hotel"`
	Price       *PriceInfo             `json:"price"`
	Dates       *DatesInfo             `json:"dates"`
	Inclusions  []string               `json:"inclusions"`
	DatePricing map[string]DatePricing `json:"date_pricing"`
	Itinerary   []ItineraryDay         `json:"itinerary"`
}

// Decode deserializes a result from either the current or the legacy shape.
// The shape is auto-detected by checking for a populated "extracted" object;
// both producers persist concurrently, so this shim is permanent.
func Decode(data []byte) (*ScrapeResult, error) {
	var probe struct {
		Extracted json.RawMessage `json:"extracted"`
		Source    string          `json:"source"`
		Success   *bool           `json:"success"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, eris.Wrap(err, "schema: decode result")
	}

	if legacyPopulated(probe.Extracted) {
		return decodeLegacy(data)
	}

	var r ScrapeResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "schema: decode result")
	}
	if r.SourceID == "" {
		r.SourceID = probe.Source
	}
	r.Success = probe.Success == nil || *probe.Success
	normalize(&r)
	return &r, nil
}

func decodeLegacy(data []byte) (*ScrapeResult, error) {
	var env legacyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, eris.Wrap(err, "schema: decode legacy result")
	}

	r := &ScrapeResult{
		SourceID:          env.SourceID,
		PackageType:       env.PackageType,
		URL:               env.URL,
		ScrapedAt:         env.ScrapedAt,
		Title:             env.Title,
		RawText:           env.RawText,
		ExtractedElements: env.ExtractedElements,
		PackageLinks:      env.PackageLinks,
		Errors:            env.Errors,
		Warnings:          env.Warnings,
		Inclusions:        env.Extracted.Inclusions,
		DatePricing:       env.Extracted.DatePricing,
		Itinerary:         env.Extracted.Itinerary,
	}
	if r.SourceID == "" {
		r.SourceID = env.Source
	}
	r.Success = env.Success == nil || *env.Success
	if env.Extracted.Flight != nil {
		r.Flight = *env.Extracted.Flight
	}
	if env.Extracted.Hotel != nil {
		r.Hotel = *env.Extracted.Hotel
	}
	if env.Extracted.Price != nil {
		r.Price = *env.Extracted.Price
	}
	if env.Extracted.Dates != nil {
		r.Dates = *env.Extracted.Dates
	}
	normalize(r)
	return r, nil
}

// legacyPopulated reports whether the "extracted" key holds a non-empty
// object; an absent, null, or empty object selects the current shape.
func legacyPopulated(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, trimmed); err != nil {
		return false
	}
	return compact.String() != "{}"
}

// normalize fills defaults any producer may have omitted.
func normalize(r *ScrapeResult) {
	if r.PackageType == "" {
		r.PackageType = PackageUnknown
	}
	if r.Price.Currency == "" {
		r.Price.Currency = "TWD"
	}
	if r.DatePricing == nil {
		r.DatePricing = map[string]DatePricing{}
	}
	if r.ExtractedElements == nil {
		r.ExtractedElements = map[string][]string{}
	}
	for date, dp := range r.DatePricing {
		if dp.Date == "" {
			dp.Date = date
		}
		if dp.Availability == "" {
			dp.Availability = Unknown
		}
		r.DatePricing[date] = dp
	}
}
