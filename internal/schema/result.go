// Package schema defines the canonical scrape result every OTA parser
// normalizes into, plus its serialization and advisory validation.
package schema

import "time"

// PackageType classifies what a scraped page sells.
type PackageType string

const (
	PackageFIT     PackageType = "fit"
	PackageGroup   PackageType = "group"
	PackageFlight  PackageType = "flight"
	PackageHotel   PackageType = "hotel"
	PackageUnknown PackageType = "unknown"
)

// Availability describes whether a departure date can still be booked.
type Availability string

const (
	Available Availability = "available"
	SoldOut   Availability = "sold_out"
	Limited   Availability = "limited"
	Unknown   Availability = "unknown"
)

// FlightSegment is a single flight leg (outbound or return).
type FlightSegment struct {
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
	AirlineCode      string `json:"airline_code"`
	DepartureAirport string `json:"departure_airport"`
	DepartureCode    string `json:"departure_code"`
	DepartureTime    string `json:"departure_time"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalCode      string `json:"arrival_code"`
	ArrivalTime      string `json:"arrival_time"`
	Date             string `json:"date"`
}

// IsPopulated reports whether the segment carries enough data to be
// considered extracted: a flight number plus at least one airport code.
// Downstream validation keys off this exact predicate.
func (s FlightSegment) IsPopulated() bool {
	return s.FlightNumber != "" && (s.DepartureCode != "" || s.ArrivalCode != "")
}

// FlightInfo pairs the outbound and return legs.
//
// The return leg is serialized under the "return" key; historical producers
// wrote "return_" to dodge a reserved word, so decoding accepts both.
type FlightInfo struct {
	Outbound FlightSegment `json:"outbound"`
	Return   FlightSegment `json:"return"`
}

// IsPopulated reports whether either leg was extracted.
func (f FlightInfo) IsPopulated() bool {
	return f.Outbound.IsPopulated() || f.Return.IsPopulated()
}

// HotelInfo holds hotel details. Vendors often list several candidate hotels
// ("A or B or same grade"), so Names keeps every candidate and Name the
// primary one.
type HotelInfo struct {
	Name       string   `json:"name"`
	Names      []string `json:"names"`
	Area       string   `json:"area"`
	AreaType   string   `json:"area_type"`
	StarRating *int     `json:"star_rating"`
	Access     []string `json:"access"`
	Amenities  []string `json:"amenities"`
	RoomType   string   `json:"room_type"`
	BedWidthCM *int     `json:"bed_width_cm"`
}

// IsPopulated reports whether any hotel name was extracted.
func (h HotelInfo) IsPopulated() bool {
	return h.Name != "" || len(h.Names) > 0
}

// PriceInfo holds pricing details in the source currency.
type PriceInfo struct {
	PerPerson      *int   `json:"per_person"`
	Total          *int   `json:"total"`
	Currency       string `json:"currency"`
	Deposit        *int   `json:"deposit"`
	SeatsAvailable *int   `json:"seats_available"`
	MinTravelers   *int   `json:"min_travelers"`
}

// IsPopulated reports whether a per-person price was extracted.
func (p PriceInfo) IsPopulated() bool {
	return p.PerPerson != nil
}

// DatePricing is a per-calendar-day price snapshot.
type DatePricing struct {
	Date           string       `json:"date"`
	Price          *int         `json:"price"`
	Availability   Availability `json:"availability"`
	SeatsRemaining *int         `json:"seats_remaining"`
	Notes          string       `json:"notes"`
}

// DatesInfo holds travel date metadata. The raw year/month/day components
// are kept for vendors that expose only partial dates.
type DatesInfo struct {
	DurationDays   *int   `json:"duration_days"`
	DurationNights *int   `json:"duration_nights"`
	DepartureDate  string `json:"departure_date"`
	ReturnDate     string `json:"return_date"`
	Year           *int   `json:"year"`
	DepartureMonth *int   `json:"departure_month"`
	DepartureDay   *int   `json:"departure_day"`
}

// IsPopulated reports whether at least the departure date was extracted.
func (d DatesInfo) IsPopulated() bool {
	return d.DepartureDate != ""
}

// ItineraryDay is a single day in a package itinerary.
type ItineraryDay struct {
	Day      int    `json:"day"`
	Content  string `json:"content"`
	IsFree   bool   `json:"is_free"`
	IsGuided bool   `json:"is_guided"`
}

// PackageLink is a package detail page discovered on a listing page.
type PackageLink struct {
	URL   string `json:"url"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ScrapeResult is the canonical output of one scraped OTA page.
//
// It is created empty at scrape start, mutated in place during extraction
// and parsing, and treated as an immutable value once returned to the
// caller. It exclusively owns all sub-entities.
type ScrapeResult struct {
	// Provenance.
	SourceID  string `json:"source_id"`
	URL       string `json:"url"`
	ScrapedAt string `json:"scraped_at"`
	Title     string `json:"title"`

	// Classification.
	PackageType PackageType `json:"package_type"`

	// Structured payload.
	Flight      FlightInfo             `json:"flight"`
	Hotel       HotelInfo              `json:"hotel"`
	Price       PriceInfo              `json:"price"`
	Dates       DatesInfo              `json:"dates"`
	Inclusions  []string               `json:"inclusions"`
	DatePricing map[string]DatePricing `json:"date_pricing"`
	Itinerary   []ItineraryDay         `json:"itinerary"`

	// Cross-cutting enrichment, set only when not already provided by the
	// vendor parser.
	BaggageIncluded *bool `json:"baggage_included"`
	BaggageKg       *int  `json:"baggage_kg"`

	// Listing discovery.
	PackageLinks []PackageLink `json:"package_links"`

	// Raw data for fallback and debugging.
	RawText           string              `json:"raw_text"`
	ExtractedElements map[string][]string `json:"extracted_elements"`

	// Result metadata.
	Success  bool     `json:"success"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewResult creates an empty result for the given scrape identity.
// Success starts true and flips only on navigation failure.
func NewResult(sourceID, url string) *ScrapeResult {
	return &ScrapeResult{
		SourceID:          sourceID,
		URL:               url,
		PackageType:       PackageUnknown,
		Price:             PriceInfo{Currency: "TWD"},
		DatePricing:       map[string]DatePricing{},
		ExtractedElements: map[string][]string{},
		Success:           true,
	}
}

// Stamp records the scrape time in ISO-8601.
func (r *ScrapeResult) Stamp(now time.Time) {
	r.ScrapedAt = now.Format(time.RFC3339)
}

// AddError records an error and marks the scrape failed.
func (r *ScrapeResult) AddError(msg string) {
	r.Success = false
	r.Errors = append(r.Errors, msg)
}

// AddWarning records an advisory warning.
func (r *ScrapeResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge copies every structured field the vendor parser produced into r,
// overwriting r's empty defaults. Provenance, raw text, and metadata stay
// untouched.
func (r *ScrapeResult) Merge(parsed *ScrapeResult) {
	if parsed == nil {
		return
	}
	r.Flight = parsed.Flight
	r.Hotel = parsed.Hotel
	r.Price = parsed.Price
	r.Dates = parsed.Dates
	r.Inclusions = parsed.Inclusions
	r.DatePricing = parsed.DatePricing
	r.Itinerary = parsed.Itinerary
	if parsed.PackageType != "" && parsed.PackageType != PackageUnknown {
		r.PackageType = parsed.PackageType
	}
	if parsed.BaggageIncluded != nil {
		r.BaggageIncluded = parsed.BaggageIncluded
		r.BaggageKg = parsed.BaggageKg
	}
}
