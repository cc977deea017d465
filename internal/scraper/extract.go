package scraper

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/yanggf8/travel-2026/internal/otaconfig"
	"github.com/yanggf8/travel-2026/internal/schema"
)

// genericSelectors is the fixed element set extracted from every page,
// keyed by the label stored in extracted_elements. Selector failures are
// independent: one bad selector never aborts the others.
var genericSelectors = []struct {
	selector string
	label    string
}{
	{".price", "price_element"},
	{".itinerary", "itinerary_element"},
	{".flight-info", "flight_element"},
	{".hotel-info", "hotel_element"},
	{"[class*='price']", "price_class"},
	{"[class*='flight']", "flight_class"},
	{"[class*='hotel']", "hotel_class"},
	{"table", "tables"},
	{".content", "content"},
	{"main", "main"},
	{"#content", "content_id"},
}

const maxElementTexts = 5

// extractGenericElements collects the text of common travel-site elements
// for fallback parsing and debugging.
func extractGenericElements(ctx context.Context, page Page) map[string][]string {
	extracted := map[string][]string{}

	for _, entry := range genericSelectors {
		elements, err := page.QueryAll(ctx, entry.selector)
		if err != nil || len(elements) == 0 {
			continue
		}

		var texts []string
		for _, el := range elements {
			if len(texts) >= maxElementTexts {
				break
			}
			text, err := el.InnerText(ctx)
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text != "" {
				texts = append(texts, text)
			}
		}
		if len(texts) > 0 {
			extracted[entry.label] = texts
		}
	}

	return extracted
}

// listingHosts maps URL substrings to the source ids that have listing
// metadata; used to pick container-based link extraction.
var listingHosts = []string{"besttour", "lifetour", "settour", "liontravel"}

// settourFallbackSelectors covers Settour listing pages when no config
// entry is present; its product cards don't expose plain anchors.
var settourFallbackSelectors = otaconfig.ListingSelectors{
	Method:      "container",
	Container:   ".product-item",
	Title:       ".product-title, h3, h4, .title",
	Price:       ".ori-price-offer, .price",
	CodeRegex:   `slider-flightInfo_([A-Z0-9]+)`,
	URLTemplate: "https://tour.settour.com.tw/product/{code}",
}

// extractPackageLinks discovers package detail links on listing pages,
// preferring configured container selectors and falling back to a generic
// anchor scan.
func (e *Engine) extractPackageLinks(ctx context.Context, page Page, baseURL string) []schema.PackageLink {
	var sourceID string
	for _, host := range listingHosts {
		if strings.Contains(baseURL, host) {
			sourceID = host
			break
		}
	}

	if sourceID != "" {
		if sel := e.sources.ListingSelectorsFor(sourceID); sel != nil && sel.Method == "container" {
			return extractContainerLinks(ctx, page, *sel)
		}
	}
	if strings.Contains(baseURL, "settour.com.tw") {
		return extractContainerLinks(ctx, page, settourFallbackSelectors)
	}

	return extractAnchorLinks(ctx, page, baseURL)
}

// extractContainerLinks lifts links from repeated product containers using
// configured selectors and a URL template.
func extractContainerLinks(ctx context.Context, page Page, sel otaconfig.ListingSelectors) []schema.PackageLink {
	codeRe, err := regexp.Compile(sel.CodeRegex)
	if err != nil || sel.URLTemplate == "" {
		return nil
	}

	items, err := page.QueryAll(ctx, sel.Container)
	if err != nil {
		return nil
	}

	var links []schema.PackageLink
	for _, item := range items {
		title := elementText(ctx, item, sel.Title, 100)
		priceText := elementText(ctx, item, sel.Price, 0)

		html, err := item.InnerHTML(ctx)
		if err != nil {
			continue
		}
		m := codeRe.FindStringSubmatch(html)
		if m == nil || len(m) < 2 || m[1] == "" {
			continue
		}

		code := m[1]
		links = append(links, schema.PackageLink{
			URL:   strings.ReplaceAll(sel.URLTemplate, "{code}", code),
			Code:  code,
			Title: strings.TrimSpace(title + " " + priceText),
		})
	}
	return links
}

// elementText returns the trimmed text of the first descendant matching
// selector, truncated to maxLen runes when maxLen > 0.
func elementText(ctx context.Context, parent Element, selector string, maxLen int) string {
	child, err := parent.Query(ctx, selector)
	if err != nil || child == nil {
		return ""
	}
	text, err := child.InnerText(ctx)
	if err != nil {
		return ""
	}
	text = strings.TrimSpace(text)
	if maxLen > 0 {
		if runes := []rune(text); len(runes) > maxLen {
			text = string(runes[:maxLen])
		}
	}
	return text
}

const maxAnchors = 100

// extractAnchorLinks scans page anchors for known OTA package URL shapes.
func extractAnchorLinks(ctx context.Context, page Page, baseURL string) []schema.PackageLink {
	anchors, err := page.QueryAll(ctx, "a[href]")
	if err != nil {
		return nil
	}
	if len(anchors) > maxAnchors {
		anchors = anchors[:maxAnchors]
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var links []schema.PackageLink
	for _, anchor := range anchors {
		href, ok, err := anchor.Attribute(ctx, "href")
		if err != nil || !ok || href == "" {
			continue
		}

		text, err := anchor.InnerText(ctx)
		if err != nil {
			text = ""
		}
		text = strings.TrimSpace(text)
		if runes := []rune(text); len(runes) > 100 {
			text = string(runes[:100])
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		fullURL := base.ResolveReference(ref).String()
		if seen[fullURL] {
			continue
		}

		link, ok := matchPackageLink(baseURL, href, fullURL, text)
		if ok {
			seen[fullURL] = true
			links = append(links, link)
		}
	}
	return links
}

var (
	besttourCodeRe   = regexp.MustCompile(`/itinerary/([A-Z0-9]+)`)
	liontravelCodeRe = regexp.MustCompile(`/(?:product|detail)/(\d+)`)
	settourCodeRe    = regexp.MustCompile(`(?i)/product/([A-Z0-9]+)`)
)

// matchPackageLink checks one href against known OTA package URL patterns.
func matchPackageLink(baseURL, href, fullURL, text string) (schema.PackageLink, bool) {
	switch {
	case strings.Contains(baseURL, "besttour.com.tw"):
		if strings.Contains(href, "/itinerary/") {
			return schema.PackageLink{URL: fullURL, Code: firstGroup(besttourCodeRe, href), Title: text}, true
		}
	case strings.Contains(baseURL, "liontravel.com"):
		if strings.Contains(href, "/product/") || strings.Contains(href, "/detail/") {
			return schema.PackageLink{URL: fullURL, Code: firstGroup(liontravelCodeRe, href), Title: text}, true
		}
	case strings.Contains(baseURL, "lifetour.com.tw"):
		if strings.Contains(href, "/detail") {
			return schema.PackageLink{URL: fullURL, Title: text}, true
		}
	case strings.Contains(baseURL, "settour.com.tw"):
		if strings.Contains(href, "/product/") {
			return schema.PackageLink{URL: fullURL, Code: firstGroup(settourCodeRe, href), Title: text}, true
		}
	}
	return schema.PackageLink{}, false
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
