// Package scraper defines the collaborator contracts and the shared scrape
// orchestration every OTA parser runs under: navigate with retry, prepare
// the page, extract text and elements, delegate to the vendor parser, merge,
// enrich, and cache.
package scraper

import (
	"context"
	"time"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// LoadStrategy selects how long navigation waits for a page.
type LoadStrategy string

const (
	// LoadNetworkIdle waits until the page has fully settled.
	LoadNetworkIdle LoadStrategy = "networkidle"
	// LoadDOMReady waits only for the DOM; faster fallback for heavy pages.
	LoadDOMReady LoadStrategy = "domcontentloaded"
)

// Page is the browser collaborator. Any automation engine exposing these
// primitives is substitutable; every call is a suspension point for the
// calling task. A Page is owned by one scrape invocation and never shared.
type Page interface {
	Navigate(ctx context.Context, url string, strategy LoadStrategy, timeout time.Duration) error
	Wait(ctx context.Context, d time.Duration) error
	Title(ctx context.Context) (string, error)
	// InnerText returns the visible text of the whole page.
	InnerText(ctx context.Context) (string, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Evaluate runs a JavaScript snippet for side effects (scrolling).
	// Engines without a JS runtime may no-op.
	Evaluate(ctx context.Context, js string) error
}

// Element is one DOM element handle returned by Page.QueryAll.
type Element interface {
	InnerText(ctx context.Context) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Click(ctx context.Context) error
	// Query finds the first descendant matching the selector, or nil.
	Query(ctx context.Context, selector string) (Element, error)
}

// Parser is the per-vendor contract. ParseRawText is the pure, deterministic
// surface vendor parsers are graded on: text in, structured result out, no
// I/O.
type Parser interface {
	SourceID() string
	ParseRawText(rawText, url string, extras map[string]string) *schema.ScrapeResult
}

// PagePreparer is an optional Parser extension for vendor-specific page
// interaction (tab clicks, popups) before text extraction. Parsers that
// don't implement it get the generic lazy-load scroll.
type PagePreparer interface {
	PreparePage(ctx context.Context, page Page, url string) error
}

// ResultCache is the slice of the result cache the engine needs. Nil-able:
// an engine without a cache always scrapes fresh.
type ResultCache interface {
	Get(sourceID, url string, extras map[string]string) *schema.ScrapeResult
	Set(result *schema.ScrapeResult, extras map[string]string)
}
