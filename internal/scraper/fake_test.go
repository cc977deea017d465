package scraper

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// fakeElement is a scripted DOM element.
type fakeElement struct {
	text     string
	html     string
	attrs    map[string]string
	children map[string]*fakeElement
	clicks   int
}

func (f *fakeElement) InnerText(context.Context) (string, error) { return f.text, nil }
func (f *fakeElement) InnerHTML(context.Context) (string, error) { return f.html, nil }

func (f *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := f.attrs[name]
	return v, ok, nil
}

func (f *fakeElement) Click(context.Context) error {
	f.clicks++
	return nil
}

func (f *fakeElement) Query(_ context.Context, selector string) (Element, error) {
	child, ok := f.children[selector]
	if !ok {
		return nil, nil
	}
	return child, nil
}

// fakePage is a scripted browser page.
type fakePage struct {
	failNavigations int // first N navigation calls fail
	navCalls        int
	strategies      []LoadStrategy

	title    string
	titleErr error
	text     string
	textErr  error
	elements map[string][]Element
	queryErr map[string]error

	evals []string
	waits []time.Duration
}

func (f *fakePage) Navigate(_ context.Context, _ string, strategy LoadStrategy, _ time.Duration) error {
	f.navCalls++
	f.strategies = append(f.strategies, strategy)
	if f.navCalls <= f.failNavigations {
		return eris.New("net::ERR_TIMED_OUT")
	}
	return nil
}

func (f *fakePage) Wait(_ context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return nil
}

func (f *fakePage) Title(context.Context) (string, error) { return f.title, f.titleErr }

func (f *fakePage) InnerText(context.Context) (string, error) { return f.text, f.textErr }

func (f *fakePage) QueryAll(_ context.Context, selector string) ([]Element, error) {
	if err := f.queryErr[selector]; err != nil {
		return nil, err
	}
	return f.elements[selector], nil
}

func (f *fakePage) Evaluate(_ context.Context, js string) error {
	f.evals = append(f.evals, js)
	return nil
}

// fakeParser returns a canned parse result.
type fakeParser struct {
	source   string
	parsed   *schema.ScrapeResult
	rawSeen  string
	prepared int
}

func (p *fakeParser) SourceID() string { return p.source }

func (p *fakeParser) ParseRawText(rawText, url string, _ map[string]string) *schema.ScrapeResult {
	p.rawSeen = rawText
	if p.parsed != nil {
		return p.parsed
	}
	return schema.NewResult(p.source, url)
}

// preparingParser additionally implements vendor page preparation.
type preparingParser struct {
	fakeParser
}

func (p *preparingParser) PreparePage(ctx context.Context, page Page, _ string) error {
	p.prepared++
	return page.Evaluate(ctx, "document.querySelector('.tab').click()")
}

// fastNav keeps retry backoff negligible in tests.
func fastNav(maxRetries int) NavigateConfig {
	return NavigateConfig{MaxRetries: maxRetries, BackoffBase: 0.001, Timeout: time.Second}
}
