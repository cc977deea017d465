// Package cache persists scrape results on disk, one JSON file per scrape
// identity, with TTL-based expiry. It exists to avoid redundant fetches and
// rate-limit trouble, so every failure mode fails open: a read or decode
// error is a miss, a write error is a skipped write, never a raised error.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 24 * time.Hour

// Cache is a file-based scrape result cache. Concurrent same-key writes are
// last-write-wins; entries are idempotent re-derivations of the same page,
// so the race is accepted.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
	log *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default 24 h freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir: dir,
		ttl: DefaultTTL,
		now: time.Now,
		log: zap.L().With(zap.String("component", "cache")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return c, nil
}

// Key derives the stable 16-hex-char cache key for a scrape identity.
// Extras are sorted as "k=v" pairs so the key is independent of argument
// order.
func Key(sourceID, url string, extras map[string]string) string {
	parts := []string{sourceID, url}
	if len(extras) > 0 {
		pairs := make([]string, 0, len(extras))
		for k, v := range extras {
			pairs = append(pairs, k+"="+v)
		}
		sort.Strings(pairs)
		parts = append(parts, pairs...)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached result for the identity, or nil on a miss. Expired
// entries are misses but stay on disk until Invalidate or Clear removes
// them. A hit carries exactly one appended provenance warning noting the
// cache age; fresh scrapes never carry it.
func (c *Cache) Get(sourceID, url string, extras map[string]string) *schema.ScrapeResult {
	key := Key(sourceID, url, extras)

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("cache read failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	result, err := schema.Decode(data)
	if err != nil {
		c.log.Warn("cache entry corrupt, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil
	}

	scrapedAt, err := parseScrapedAt(result.ScrapedAt)
	if err != nil {
		c.log.Warn("cache entry has unparseable scraped_at, treating as miss",
			zap.String("key", key), zap.String("scraped_at", result.ScrapedAt))
		return nil
	}

	age := c.now().Sub(scrapedAt)
	if age > c.ttl {
		return nil
	}

	result.AddWarning(fmt.Sprintf("Loaded from cache (age: %s)", ageString(age)))
	return result
}

// Set persists a result in the current shape under its identity key.
// Write errors are logged and swallowed.
func (c *Cache) Set(result *schema.ScrapeResult, extras map[string]string) {
	key := Key(result.SourceID, result.URL, extras)

	data, err := result.Encode()
	if err != nil {
		c.log.Warn("cache encode failed, skipping write",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.log.Warn("cache write failed",
			zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes one cached entry. Deleting a missing entry is a no-op.
func (c *Cache) Invalidate(sourceID, url string, extras map[string]string) {
	key := Key(sourceID, url, extras)
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		c.log.Warn("cache invalidate failed",
			zap.String("key", key), zap.Error(err))
	}
}

// Clear removes every entry, or only entries for one source when sourceID
// is non-empty. Entries that fail to decode are only removed by a full
// clear, since their source cannot be determined.
func (c *Cache) Clear(sourceID string) error {
	entries, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return eris.Wrap(err, "cache: list entries")
	}

	for _, path := range entries {
		if sourceID != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			result, err := schema.Decode(data)
			if err != nil || result.SourceID != sourceID {
				continue
			}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "cache: remove %s", path)
		}
	}
	return nil
}

// Stats reports the number of entries and their total size in bytes.
func (c *Cache) Stats() (entries int, bytes int64, err error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, 0, eris.Wrap(err, "cache: list entries")
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		entries++
		bytes += info.Size()
	}
	return entries, bytes, nil
}

// parseScrapedAt accepts the timestamp layouts observed across producers.
func parseScrapedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("cache: empty scraped_at")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ageString renders a cache age in the coarsest human unit: minutes under
// an hour, hours under a day, days otherwise.
func ageString(age time.Duration) string {
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
