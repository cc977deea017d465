package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/browser"
	"github.com/yanggf8/travel-2026/internal/cache"
	"github.com/yanggf8/travel-2026/internal/otaconfig"
	"github.com/yanggf8/travel-2026/internal/schema"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

// initEngine wires the scrape engine from configuration: disk cache, OTA
// metadata, hotel-area tables, and navigation policy.
func initEngine() (*scraper.Engine, error) {
	c, err := cache.New(cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL()))
	if err != nil {
		return nil, eris.Wrap(err, "init cache")
	}

	sources, err := otaconfig.LoadSources(cfg.Data.SourcesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load sources")
	}
	areas, err := otaconfig.LoadAreaIndex(cfg.Data.AreasFile)
	if err != nil {
		return nil, eris.Wrap(err, "load hotel areas")
	}

	return scraper.NewEngine(
		scraper.WithCache(c),
		scraper.WithSources(sources),
		scraper.WithAreaIndex(areas),
		scraper.WithNavigateConfig(cfg.Navigate.Engine()),
		scraper.WithSettleDelay(cfg.Navigate.SettleDelay()),
	), nil
}

// pageSession is a Page plus whatever has to be torn down when it is done.
type pageSession struct {
	page  scraper.Page
	close func()
}

// openPage starts a page backend per configuration: a Chrome tab by
// default, or a plain HTTP fetcher with --static.
func openPage(ctx context.Context) (*pageSession, error) {
	factory, err := openPageFactory(ctx)
	if err != nil {
		return nil, err
	}
	page, closePage := factory.newPage()
	return &pageSession{
		page: page,
		close: func() {
			closePage()
			factory.close()
		},
	}, nil
}

// pageFactory hands out independent pages for concurrent scrapes. Chrome
// tabs share one browser process; static pages are freestanding.
type pageFactory struct {
	newPage func() (scraper.Page, func())
	close   func()
}

func openPageFactory(ctx context.Context) (*pageFactory, error) {
	if cfg.Browser.Static {
		return &pageFactory{
			newPage: func() (scraper.Page, func()) {
				return browser.NewStaticPage(), func() {}
			},
			close: func() {},
		}, nil
	}

	bcfg := browser.DefaultBrowserConfig()
	bcfg.Headless = cfg.Browser.Headless
	if cfg.Browser.UserAgent != "" {
		bcfg.UserAgent = cfg.Browser.UserAgent
	}

	b, err := browser.NewBrowser(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &pageFactory{
		newPage: func() (scraper.Page, func()) {
			page := b.NewPage()
			return page, page.Close
		},
		close: b.Close,
	}, nil
}

// parseExtras splits repeated key=value flags into a map. Used for cache
// identity parameters like date or pax.
func parseExtras(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extras := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, eris.Errorf("invalid extra %q; want key=value", pair)
		}
		extras[key] = value
	}
	return extras, nil
}

// attachValidation appends data-quality warnings to a scraped result using
// the configured price floors. Advisory only: a thin result still ships.
func attachValidation(result *schema.ScrapeResult) {
	v := schema.Validator{
		MinPerPerson: cfg.Validation.MinPerPerson,
		MinDatePrice: cfg.Validation.MinDatePrice,
	}
	result.Warnings = append(result.Warnings, v.Validate(result)...)
}

func logResultSummary(result *schema.ScrapeResult) {
	zap.L().Info("scrape complete",
		zap.String("source", result.SourceID),
		zap.String("url", result.URL),
		zap.Bool("success", result.Success),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("errors", len(result.Errors)),
	)
}
