package browser

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/resilience"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

const maxBodyBytes = 2 << 20 // 2 MiB

// StaticPage fetches HTML over plain HTTP and serves the Page interface from
// the parsed document. No JavaScript runs, so it only works for OTAs that
// render server-side; it is far cheaper than a browser tab when it does.
type StaticPage struct {
	client *http.Client
	retry  resilience.RetryConfig
	log    *zap.Logger

	doc  *goquery.Document
	text string
}

// StaticPageOption configures a StaticPage.
type StaticPageOption func(*StaticPage)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) StaticPageOption {
	return func(p *StaticPage) { p.client = c }
}

// WithRetryConfig replaces the fetch retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) StaticPageOption {
	return func(p *StaticPage) { p.retry = cfg }
}

// NewStaticPage creates a static page fetcher.
func NewStaticPage(opts ...StaticPageOption) *StaticPage {
	p := &StaticPage{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
		log:   zap.L().With(zap.String("component", "browser.static")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ scraper.Page = (*StaticPage)(nil)

// Navigate fetches the URL, retrying transient failures. The load strategy
// is irrelevant for a single HTTP roundtrip and is ignored.
func (p *StaticPage) Navigate(ctx context.Context, url string, _ scraper.LoadStrategy, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	retry := p.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("static", "fetch_page")
	}

	body, err := resilience.DoVal(ctx, retry, func(ctx context.Context) ([]byte, error) {
		return p.fetch(ctx, url)
	})
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "static: parse %s", url)
	}
	p.doc = doc
	p.text = documentText(doc)
	return nil
}

func (p *StaticPage) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "static: create request")
	}
	req.Header.Set("User-Agent", DefaultBrowserConfig().UserAgent)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "static: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "static: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		// Blocks don't clear on retry; the caller should fall back to the
		// browser page.
		return nil, eris.Errorf("static: blocked (%s)", blockType)
	}

	if resp.StatusCode >= 400 {
		err := eris.Errorf("static: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

// Wait blocks for d or until the context is cancelled. Static pages have
// nothing to settle, but the engine's pacing still applies.
func (p *StaticPage) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *StaticPage) Title(context.Context) (string, error) {
	if p.doc == nil {
		return "", eris.New("static: no document loaded")
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

func (p *StaticPage) InnerText(context.Context) (string, error) {
	if p.doc == nil {
		return "", eris.New("static: no document loaded")
	}
	return p.text, nil
}

func (p *StaticPage) QueryAll(_ context.Context, selector string) ([]scraper.Element, error) {
	if p.doc == nil {
		return nil, eris.New("static: no document loaded")
	}
	var elements []scraper.Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &staticElement{sel: sel})
	})
	return elements, nil
}

// Evaluate is a no-op: there is no JavaScript engine behind a static page.
func (p *StaticPage) Evaluate(context.Context, string) error {
	return nil
}

// staticElement wraps a goquery selection.
type staticElement struct {
	sel *goquery.Selection
}

var _ scraper.Element = (*staticElement)(nil)

func (e *staticElement) InnerText(context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *staticElement) InnerHTML(context.Context) (string, error) {
	html, err := e.sel.Html()
	if err != nil {
		return "", eris.Wrap(err, "static: element html")
	}
	return html, nil
}

func (e *staticElement) Attribute(_ context.Context, name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

// Click cannot interact with a static document.
func (e *staticElement) Click(context.Context) error {
	return eris.New("static: click not supported")
}

func (e *staticElement) Query(_ context.Context, selector string) (scraper.Element, error) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, nil
	}
	return &staticElement{sel: found}, nil
}

var (
	skipTextTags = map[string]bool{"script": true, "style": true, "nav": true, "footer": true, "noscript": true}
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
)

// documentText flattens the document body into newline-separated text,
// skipping the chrome (scripts, styles, nav, footer) so the vendor parsers
// see content comparable to a browser's innerText.
func documentText(doc *goquery.Document) string {
	var b strings.Builder
	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	body.Children().Each(func(_ int, sel *goquery.Selection) {
		appendText(&b, sel)
	})

	text := spaceRunRe.ReplaceAllString(b.String(), " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func appendText(b *strings.Builder, sel *goquery.Selection) {
	node := goquery.NodeName(sel)
	if skipTextTags[node] {
		return
	}
	if children := sel.Children(); children.Length() > 0 {
		children.Each(func(_ int, child *goquery.Selection) {
			appendText(b, child)
		})
		return
	}
	if text := strings.TrimSpace(sel.Text()); text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
}
