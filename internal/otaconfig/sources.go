// Package otaconfig loads the data-driven collaborators the scraper core
// injects instead of hardcoding: per-OTA listing metadata and the hotel-area
// keyword tables.
package otaconfig

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ListingSelectors describes how to lift package links off one OTA's
// listing pages when the container method applies.
type ListingSelectors struct {
	Method      string `json:"method"` // "container" or "" for anchor scan
	Container   string `json:"container"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	CodeRegex   string `json:"code_regex"`
	URLTemplate string `json:"url_template"`
}

// SourceMeta is one OTA's entry in ota-sources.json.
type SourceMeta struct {
	Name             string            `json:"name"`
	BaseURL          string            `json:"base_url"`
	ListingSelectors *ListingSelectors `json:"listing_selectors"`
	ListingURLs      map[string]string `json:"listing_urls"` // destination -> URL template
}

// Sources holds per-OTA metadata keyed by source id.
type Sources struct {
	byID map[string]SourceMeta
}

// LoadSources reads ota-sources.json. A missing file yields an empty set so
// scrapes degrade to the generic anchor scan.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Sources{byID: map[string]SourceMeta{}}, nil
		}
		return nil, eris.Wrapf(err, "otaconfig: read %s", path)
	}

	var doc struct {
		Sources map[string]SourceMeta `json:"sources"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "otaconfig: parse %s", path)
	}
	if doc.Sources == nil {
		doc.Sources = map[string]SourceMeta{}
	}
	return &Sources{byID: doc.Sources}, nil
}

// EmptySources returns a source set with no entries.
func EmptySources() *Sources {
	return &Sources{byID: map[string]SourceMeta{}}
}

// ListingSelectorsFor returns the listing selectors for a source, or nil.
func (s *Sources) ListingSelectorsFor(sourceID string) *ListingSelectors {
	if s == nil {
		return nil
	}
	meta, ok := s.byID[sourceID]
	if !ok {
		return nil
	}
	return meta.ListingSelectors
}

// regionAliases maps URL keywords to hotel-area table regions.
var regionAliases = []struct {
	keyword string
	region  string
}{
	{"kansai", "kansai"},
	{"osaka", "kansai"},
	{"kyoto", "kansai"},
	{"tokyo", "tokyo"},
	{"nagoya", "nagoya"},
}

// InferRegion guesses the destination region from URL keywords. Returns ""
// when nothing matches; enrichment then skips area detection.
func InferRegion(url string) string {
	u := strings.ToLower(url)
	for _, alias := range regionAliases {
		if strings.Contains(u, alias.keyword) {
			return alias.region
		}
	}
	return ""
}
