package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/otaconfig"
	"github.com/yanggf8/travel-2026/internal/schema"
)

// DefaultSettleDelay is how long the engine waits after navigation before
// preparing the page, giving dynamic content a chance to render.
const DefaultSettleDelay = 3 * time.Second

// Engine runs the shared scrape sequence around a vendor parser. Construct
// one per process and reuse it; each Scrape call owns its own Page, so
// concurrent invocations only share the cache.
type Engine struct {
	cache   ResultCache
	areas   *otaconfig.AreaIndex
	sources *otaconfig.Sources
	nav     NavigateConfig
	settle  time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache wires a result cache. Without one, every scrape is fresh.
func WithCache(c ResultCache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithAreaIndex wires the hotel-area keyword lookup used by enrichment.
func WithAreaIndex(a *otaconfig.AreaIndex) EngineOption {
	return func(e *Engine) { e.areas = a }
}

// WithSources wires per-OTA listing metadata for package link discovery.
func WithSources(s *otaconfig.Sources) EngineOption {
	return func(e *Engine) { e.sources = s }
}

// WithNavigateConfig overrides the navigation retry policy.
func WithNavigateConfig(cfg NavigateConfig) EngineOption {
	return func(e *Engine) { e.nav = cfg }
}

// WithSettleDelay overrides the post-navigation settle wait.
func WithSettleDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d >= 0 {
			e.settle = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with default navigation and settle policy.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		nav:    DefaultNavigateConfig(),
		settle: DefaultSettleDelay,
		now:    time.Now,
		log:    zap.L().With(zap.String("component", "scraper.engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options controls one scrape invocation.
type Options struct {
	// UseCache consults the cache before navigating and writes the result
	// through afterwards.
	UseCache bool
	// Extras are additional cache-identity parameters (date, pax) also
	// handed to the vendor parser.
	Extras map[string]string
}

// DefaultOptions returns the caching-enabled defaults.
func DefaultOptions() Options {
	return Options{UseCache: true}
}

// Scrape runs the full sequence: cache probe, navigate with retry, settle,
// prepare, extract, parse, merge, enrich, cache write-through. It always
// returns a result; navigation exhaustion is recorded on the result, and
// the cache is written only after the merge and enrichment complete.
func (e *Engine) Scrape(ctx context.Context, page Page, p Parser, url string, opts Options) *schema.ScrapeResult {
	sourceID := p.SourceID()
	log := e.log.With(zap.String("source", sourceID), zap.String("url", url))

	if opts.UseCache && e.cache != nil {
		if cached := e.cache.Get(sourceID, url, opts.Extras); cached != nil {
			log.Debug("cache hit, skipping navigation")
			return cached
		}
	}

	result := schema.NewResult(sourceID, url)
	result.Stamp(e.now())

	if !NavigateWithRetry(ctx, page, url, e.nav) {
		result.AddError(fmt.Sprintf("Failed to navigate to %s after retries", url))
		return result
	}

	// Let dynamic content render before touching the page.
	if err := page.Wait(ctx, e.settle); err != nil {
		log.Debug("settle wait interrupted", zap.Error(err))
	}

	e.preparePage(ctx, page, p, url, log)

	if title, err := page.Title(ctx); err == nil {
		result.Title = title
	} else {
		log.Debug("title extraction failed", zap.Error(err))
	}

	rawText, err := page.InnerText(ctx)
	if err != nil {
		log.Warn("could not extract page text", zap.Error(err))
		rawText = ""
	}
	result.RawText = rawText

	result.ExtractedElements = extractGenericElements(ctx, page)
	result.PackageLinks = e.extractPackageLinks(ctx, page, url)

	parsed := p.ParseRawText(rawText, url, opts.Extras)
	result.Merge(parsed)

	e.enrich(result, url)

	if opts.UseCache && e.cache != nil {
		e.cache.Set(result, opts.Extras)
	}

	return result
}

// preparePage runs vendor-specific page interaction when the parser provides
// it, otherwise the generic lazy-load scroll. Preparation failures degrade
// the extraction, they don't abort it.
func (e *Engine) preparePage(ctx context.Context, page Page, p Parser, url string, log *zap.Logger) {
	var err error
	if preparer, ok := p.(PagePreparer); ok {
		err = preparer.PreparePage(ctx, page, url)
	} else {
		err = ScrollPage(ctx, page)
	}
	if err != nil {
		log.Debug("page preparation incomplete", zap.Error(err))
	}
}

// enrich fills cross-cutting fields the vendor parser left unset.
func (e *Engine) enrich(result *schema.ScrapeResult, url string) {
	if result.BaggageIncluded == nil && result.RawText != "" {
		included, kg := ExtractBaggage(result.RawText)
		result.BaggageIncluded = included
		result.BaggageKg = kg
	}

	if result.Hotel.IsPopulated() && result.Hotel.AreaType == "" {
		region := otaconfig.InferRegion(url)
		if region != "" {
			name := result.Hotel.Name
			if name == "" && len(result.Hotel.Names) > 0 {
				name = result.Hotel.Names[0]
			}
			result.Hotel.AreaType = e.areas.Detect(name, region)
		}
	}
}
