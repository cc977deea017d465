// Package registry maps URLs and source ids to vendor parsers. The parser
// set is closed: construction goes through a builder table so an unknown id
// fails loudly with the valid choices, instead of silently falling back to
// a generic scrape.
package registry

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Source identifies one supported OTA.
type Source string

const (
	Besttour      Source = "besttour"
	Liontravel    Source = "liontravel"
	Lifetour      Source = "lifetour"
	Settour       Source = "settour"
	Tigerair      Source = "tigerair"
	Trip          Source = "trip"
	GoogleFlights Source = "google_flights"
	Agoda         Source = "agoda"
	EzTravel      Source = "eztravel"
	Booking       Source = "booking"
)

// urlPatterns is ordered: the first match wins, so more specific hosts must
// precede generic ones.
var urlPatterns = []struct {
	re     *regexp.Regexp
	source Source
}{
	{regexp.MustCompile(`besttour\.com\.tw`), Besttour},
	{regexp.MustCompile(`liontravel\.com`), Liontravel},
	{regexp.MustCompile(`lifetour\.com\.tw`), Lifetour},
	{regexp.MustCompile(`settour\.com\.tw`), Settour},
	{regexp.MustCompile(`tigerairtw\.com`), Tigerair},
	{regexp.MustCompile(`trip\.com`), Trip},
	{regexp.MustCompile(`google\.com/travel/flights`), GoogleFlights},
	{regexp.MustCompile(`agoda\.com`), Agoda},
	{regexp.MustCompile(`eztravel\.com\.tw`), EzTravel},
	{regexp.MustCompile(`booking\.com`), Booking},
}

// DetectOTA returns the source for a URL, or "" and false when the URL does
// not belong to any supported OTA.
func DetectOTA(url string) (Source, bool) {
	for _, p := range urlPatterns {
		if p.re.MatchString(url) {
			return p.source, true
		}
	}
	return "", false
}

// Builder constructs one vendor parser.
type Builder func() scraper.Parser

// Registry hands out memoized parser instances. Parsers are stateless after
// construction, so one instance per source is shared across scrapes.
type Registry struct {
	mu       sync.Mutex
	builders map[Source]Builder
	cache    map[Source]scraper.Parser
	order    []Source
}

// New creates an empty registry. Most callers want Default.
func New() *Registry {
	return &Registry{
		builders: map[Source]Builder{},
		cache:    map[Source]scraper.Parser{},
	}
}

// Register adds a builder for a source. Registering the same source twice
// replaces the builder and drops the memoized instance.
func (r *Registry) Register(source Source, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[source]; !exists {
		r.order = append(r.order, source)
	}
	r.builders[source] = build
	delete(r.cache, source)
}

// Parser returns the memoized parser for a source, constructing it on first
// use. Unknown sources error with the registered set.
func (r *Registry) Parser(source Source) (scraper.Parser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache[source]; ok {
		return p, nil
	}
	build, ok := r.builders[source]
	if !ok {
		return nil, eris.Errorf("registry: no parser registered for source %q (available: %s)",
			string(source), joinSources(r.order))
	}
	p := build()
	r.cache[source] = p
	return p, nil
}

// ParserForURL detects the OTA and returns its parser in one step.
func (r *Registry) ParserForURL(url string) (scraper.Parser, Source, error) {
	source, ok := DetectOTA(url)
	if !ok {
		return nil, "", eris.Errorf("registry: no supported OTA matches url %s", url)
	}
	p, err := r.Parser(source)
	if err != nil {
		return nil, source, err
	}
	return p, source, nil
}

// Sources returns the registered source ids in registration order.
func (r *Registry) Sources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Source, len(r.order))
	copy(out, r.order)
	return out
}

func joinSources(sources []Source) string {
	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = string(src)
	}
	return strings.Join(ids, ", ")
}
