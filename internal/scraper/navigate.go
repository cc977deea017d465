package scraper

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// NavigateConfig bounds navigation retries.
type NavigateConfig struct {
	// MaxRetries is the number of navigation attempts. Default: 3.
	MaxRetries int
	// BackoffBase is the exponential backoff base: the sleep after failed
	// attempt n is BackoffBase^(n+1) seconds. Default: 2.0.
	BackoffBase float64
	// Timeout bounds a single navigation call. Default: 60 s.
	Timeout time.Duration
}

// DefaultNavigateConfig returns the navigation defaults.
func DefaultNavigateConfig() NavigateConfig {
	return NavigateConfig{
		MaxRetries:  3,
		BackoffBase: 2.0,
		Timeout:     60 * time.Second,
	}
}

func (cfg NavigateConfig) withDefaults() NavigateConfig {
	def := DefaultNavigateConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg
}

// NavigateWithRetry drives page navigation with exponential backoff. Each
// attempt tries the fully-settled strategy first and falls back to DOM-ready
// before sleeping and retrying. Reports success; it never returns an error —
// exhaustion is a scrape contingency, not a programmer fault.
func NavigateWithRetry(ctx context.Context, page Page, url string, cfg NavigateConfig) bool {
	cfg = cfg.withDefaults()
	log := zap.L().With(zap.String("component", "scraper.navigate"), zap.String("url", url))

	strategies := []LoadStrategy{LoadNetworkIdle, LoadDOMReady}

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		var lastErr error
		for _, strategy := range strategies {
			if ctx.Err() != nil {
				return false
			}
			err := page.Navigate(ctx, url, strategy, cfg.Timeout)
			if err == nil {
				return true
			}
			lastErr = err
			if strategy == LoadNetworkIdle {
				// Expected on slow pages; the DOM-ready fallback is next.
				continue
			}
		}

		if attempt < cfg.MaxRetries-1 {
			wait := time.Duration(math.Pow(cfg.BackoffBase, float64(attempt+1)) * float64(time.Second))
			log.Warn("navigation failed, backing off",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", cfg.MaxRetries),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return false
			case <-timer.C:
			}
		} else {
			log.Warn("all navigation retries exhausted",
				zap.Int("max_retries", cfg.MaxRetries),
				zap.Error(lastErr),
			)
		}
	}

	return false
}

// ScrollPage scrolls in steps to trigger lazy loading: bottom, incremental
// steps, bottom again. The default page preparation for every parser.
func ScrollPage(ctx context.Context, page Page) error {
	const (
		steps        = 5
		stepDelay    = 500 * time.Millisecond
		settleDelay  = 2 * time.Second
		stepDistance = 1000
	)

	if err := page.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return err
	}
	if err := page.Wait(ctx, settleDelay); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		js := fmt.Sprintf("window.scrollTo(0, %d)", (i+1)*stepDistance)
		if err := page.Evaluate(ctx, js); err != nil {
			return err
		}
		if err := page.Wait(ctx, stepDelay); err != nil {
			return err
		}
	}

	if err := page.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return err
	}
	return page.Wait(ctx, settleDelay)
}
