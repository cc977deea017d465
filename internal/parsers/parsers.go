// Package parsers holds the vendor-specific raw-text parsers. Each parser is
// pure: raw page text in, structured result out, no I/O. Vendors that need
// page interaction before extraction (tab clicks, lazy loads) additionally
// implement the page preparation hook.
package parsers

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/yanggf8/travel-2026/internal/registry"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// DefaultRegistry returns a registry with every built-in vendor parser.
func DefaultRegistry() *registry.Registry {
	r := registry.New()
	r.Register(registry.Besttour, func() scraper.Parser { return &Besttour{} })
	r.Register(registry.Liontravel, func() scraper.Parser { return &Liontravel{} })
	r.Register(registry.Lifetour, func() scraper.Parser { return &Lifetour{} })
	r.Register(registry.Settour, func() scraper.Parser { return &Settour{} })
	r.Register(registry.Tigerair, func() scraper.Parser { return &Tigerair{} })
	r.Register(registry.Trip, func() scraper.Parser { return &Trip{} })
	r.Register(registry.GoogleFlights, func() scraper.Parser { return &GoogleFlights{} })
	r.Register(registry.Agoda, func() scraper.Parser { return &Agoda{} })
	r.Register(registry.EzTravel, func() scraper.Parser { return &EzTravel{} })
	return r
}

// Airport codes seen on Taiwan-Japan OTA pages.
var knownAirportsRe = regexp.MustCompile(`(TPE|NRT|HND|KIX|OSA|NGO|CTS|FUK|OKA)`)

var (
	airportCodeRe = regexp.MustCompile(`\(([A-Z]{3})\)`)
	clockRe       = regexp.MustCompile(`(\d{2}:\d{2})`)
	durationRe    = regexp.MustCompile(`(\d+)\s*天\s*(\d+)\s*夜`)
)

// amount parses "25,900" into 25900. Returns 0 on malformed input.
func amount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// splitLines splits raw page text into trimmed lines, keeping empties so
// positional block parsers see the original layout.
func splitLines(rawText string) []string {
	lines := strings.Split(rawText, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// lineAt returns the trimmed line at index i, or "" past the end.
func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// clickFirst queries each selector in order and clicks the first element
// whose text contains substr (any text when substr is empty). Returns true
// once a click lands.
func clickFirst(ctx context.Context, page scraper.Page, selectors []string, substr string) bool {
	for _, sel := range selectors {
		elements, err := page.QueryAll(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range elements {
			if substr != "" {
				text, err := el.InnerText(ctx)
				if err != nil || !strings.Contains(text, substr) {
					continue
				}
			}
			if err := el.Click(ctx); err == nil {
				return true
			}
		}
	}
	return false
}
