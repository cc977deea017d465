// Package browser provides the two page implementations the scrape engine
// drives: a chromedp-backed headless Chrome page for JS-heavy OTAs, and a
// plain HTTP static page for sites that render server-side.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Browser owns a headless Chrome process. Pages created from it share the
// process but get their own tab.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	log         *zap.Logger
}

// BrowserConfig controls Chrome startup.
type BrowserConfig struct {
	Headless  bool
	UserAgent string
}

// DefaultBrowserConfig returns the production Chrome settings.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  true,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	}
}

// NewBrowser starts a Chrome process. Close must be called to shut it down.
func NewBrowser(ctx context.Context, cfg BrowserConfig) (*Browser, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Start the process eagerly so startup failures surface here, not on
	// the first scrape.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: start chrome")
	}

	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
		log:         zap.L().With(zap.String("component", "browser")),
	}, nil
}

// NewPage opens a fresh tab. The returned page is not safe for concurrent
// use; open one per worker.
func (b *Browser) NewPage() *ChromePage {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	return &ChromePage{ctx: tabCtx, cancel: cancel, log: b.log}
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

// ChromePage drives one Chrome tab.
type ChromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

var _ scraper.Page = (*ChromePage)(nil)

// Close releases the tab.
func (p *ChromePage) Close() {
	p.cancel()
}

// run executes chromedp actions against the tab, bounded by an optional
// timeout and cancelled if the caller's context is.
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := p.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// networkQuietWindow is how long the page must stay quiet after load before
// a networkidle navigation is considered settled.
const networkQuietWindow = 2 * time.Second

// Navigate loads url. Chrome exposes no direct networkidle signal the way
// Playwright does, so that strategy is approximated by the load event plus a
// quiet window; domcontentloaded returns as soon as the document is ready.
func (p *ChromePage) Navigate(ctx context.Context, url string, strategy scraper.LoadStrategy, timeout time.Duration) error {
	actions := []chromedp.Action{chromedp.Navigate(url)}
	switch strategy {
	case scraper.LoadDOMReady:
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	default:
		actions = append(actions,
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(networkQuietWindow),
		)
	}
	if err := p.run(ctx, timeout, actions...); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}
	return nil
}

// Wait idles the tab for d.
func (p *ChromePage) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return p.run(ctx, 0, chromedp.Sleep(d))
}

// Title returns the document title.
func (p *ChromePage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, 10*time.Second, chromedp.Title(&title)); err != nil {
		return "", eris.Wrap(err, "browser: title")
	}
	return title, nil
}

// InnerText returns the rendered text of the whole page.
func (p *ChromePage) InnerText(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, 30*time.Second,
		chromedp.Evaluate("document.body.innerText", &text))
	if err != nil {
		return "", eris.Wrap(err, "browser: extract text")
	}
	return text, nil
}

// QueryAll returns all elements matching a CSS selector, possibly none.
func (p *ChromePage) QueryAll(ctx context.Context, selector string) ([]scraper.Element, error) {
	var nodes []*cdp.Node
	err := p.run(ctx, 10*time.Second,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, eris.Wrapf(err, "browser: query %s", selector)
	}
	elements := make([]scraper.Element, len(nodes))
	for i, n := range nodes {
		elements[i] = &chromeElement{page: p, node: n}
	}
	return elements, nil
}

// Evaluate runs JavaScript in the page, discarding any result.
func (p *ChromePage) Evaluate(ctx context.Context, js string) error {
	if err := p.run(ctx, 10*time.Second, chromedp.Evaluate(js, nil)); err != nil {
		return eris.Wrap(err, "browser: evaluate")
	}
	return nil
}

// chromeElement addresses one DOM node by its CDP node id.
type chromeElement struct {
	page *ChromePage
	node *cdp.Node
}

var _ scraper.Element = (*chromeElement)(nil)

func (e *chromeElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromeElement) InnerText(ctx context.Context) (string, error) {
	var text string
	err := e.page.run(ctx, 10*time.Second,
		chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	if err != nil {
		return "", eris.Wrap(err, "browser: element text")
	}
	return text, nil
}

func (e *chromeElement) InnerHTML(ctx context.Context) (string, error) {
	var html string
	err := e.page.run(ctx, 10*time.Second,
		chromedp.InnerHTML(e.ids(), &html, chromedp.ByNodeID))
	if err != nil {
		return "", eris.Wrap(err, "browser: element html")
	}
	return html, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value string
	var ok bool
	err := e.page.run(ctx, 10*time.Second,
		chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", false, eris.Wrapf(err, "browser: attribute %s", name)
	}
	return value, ok, nil
}

func (e *chromeElement) Click(ctx context.Context) error {
	err := e.page.run(ctx, 10*time.Second,
		chromedp.Click(e.ids(), chromedp.ByNodeID))
	if err != nil {
		return eris.Wrap(err, "browser: click")
	}
	return nil
}

func (e *chromeElement) Query(ctx context.Context, selector string) (scraper.Element, error) {
	var nodes []*cdp.Node
	err := e.page.run(ctx, 10*time.Second,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery,
			chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, eris.Wrapf(err, "browser: subquery %s", selector)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &chromeElement{page: e.page, node: nodes[0]}, nil
}
