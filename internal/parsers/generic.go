package parsers

import "github.com/yanggf8/travel-2026/internal/schema"

// Generic is the fallback for URLs outside the known vendor set. It extracts
// nothing itself; the engine still navigates, scrolls, and captures the
// title, raw text, generic elements, and package links, which is enough for
// manual inspection of an unsupported site.
type Generic struct{}

func (g *Generic) SourceID() string { return "generic" }

func (g *Generic) ParseRawText(_, url string, _ map[string]string) *schema.ScrapeResult {
	return schema.NewResult(g.SourceID(), url)
}
