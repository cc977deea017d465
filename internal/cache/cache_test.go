package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanggf8/travel-2026/internal/schema"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), opts...)
	require.NoError(t, err)
	return c
}

func storedResult(sourceID, url string, scrapedAt time.Time) *schema.ScrapeResult {
	r := schema.NewResult(sourceID, url)
	r.Stamp(scrapedAt)
	r.Title = "東京自由行"
	r.Price.PerPerson = schema.Int(25900)
	r.Flight.Outbound = schema.FlightSegment{FlightNumber: "MM620", DepartureCode: "TPE", ArrivalCode: "NRT"}
	return r
}

func TestKey_Stable(t *testing.T) {
	t.Parallel()

	a := Key("besttour", "https://example.com/x", map[string]string{"date": "2026-02-13", "pax": "2"})
	b := Key("besttour", "https://example.com/x", map[string]string{"pax": "2", "date": "2026-02-13"})
	assert.Equal(t, a, b, "extras order must not change the key")
	assert.Len(t, a, 16)

	assert.NotEqual(t, a, Key("besttour", "https://example.com/x", nil))
	assert.NotEqual(t, a, Key("settour", "https://example.com/x", map[string]string{"date": "2026-02-13", "pax": "2"}))
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithClock(func() time.Time { return now }))

	original := storedResult("besttour", "https://www.besttour.com.tw/itinerary/X", now.Add(-10*time.Minute))
	c.Set(original, nil)

	got := c.Get("besttour", "https://www.besttour.com.tw/itinerary/X", nil)
	require.NotNil(t, got)
	assert.Equal(t, original.Flight, got.Flight)
	assert.Equal(t, original.Price, got.Price)
	assert.Equal(t, original.Title, got.Title)

	// Exactly one provenance warning, absent on the original.
	assert.Empty(t, original.Warnings)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "Loaded from cache (age: 10m)", got.Warnings[0])
}

func TestCache_MissForUnknownKey(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	assert.Nil(t, c.Get("besttour", "https://never-set.example", nil))
}

func TestCache_ExtrasDistinguishEntries(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithClock(func() time.Time { return now }))

	r := storedResult("liontravel", "https://vacation.liontravel.com/search", now)
	c.Set(r, map[string]string{"date": "2026-02-11"})

	assert.NotNil(t, c.Get("liontravel", "https://vacation.liontravel.com/search", map[string]string{"date": "2026-02-11"}))
	assert.Nil(t, c.Get("liontravel", "https://vacation.liontravel.com/search", map[string]string{"date": "2026-02-12"}))
	assert.Nil(t, c.Get("liontravel", "https://vacation.liontravel.com/search", nil))
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithTTL(time.Hour), WithClock(func() time.Time { return now }))

	url := "https://tour.settour.com.tw/product/X"
	c.Set(storedResult("settour", url, now.Add(-2*time.Hour)), nil)

	assert.Nil(t, c.Get("settour", url, nil), "expired entry must be a miss")

	// Expiry does not delete the file; deletion is explicit.
	key := Key("settour", url, nil)
	_, err := os.Stat(filepath.Join(c.dir, key+".json"))
	assert.NoError(t, err)
}

func TestCache_AgeWarningUnits(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithTTL(100*24*time.Hour), WithClock(func() time.Time { return now }))

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"minutes", 25 * time.Minute, "Loaded from cache (age: 25m)"},
		{"hours", 5 * time.Hour, "Loaded from cache (age: 5h)"},
		{"days", 72 * time.Hour, "Loaded from cache (age: 3d)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "https://example.com/" + tt.name
			c.Set(storedResult("besttour", url, now.Add(-tt.age)), nil)
			got := c.Get("besttour", url, nil)
			require.NotNil(t, got)
			require.Len(t, got.Warnings, 1)
			assert.Equal(t, tt.want, got.Warnings[0])
		})
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	key := Key("besttour", "https://example.com/corrupt", nil)
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, key+".json"), []byte("{not json"), 0o644))

	assert.Nil(t, c.Get("besttour", "https://example.com/corrupt", nil))
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithClock(func() time.Time { return now }))

	url := "https://example.com/x"
	c.Set(storedResult("besttour", url, now), nil)
	require.NotNil(t, c.Get("besttour", url, nil))

	c.Invalidate("besttour", url, nil)
	assert.Nil(t, c.Get("besttour", url, nil))

	// Invalidating a missing entry is a no-op.
	c.Invalidate("besttour", url, nil)
}

func TestCache_ClearBySource(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithClock(func() time.Time { return now }))

	c.Set(storedResult("besttour", "https://a.example", now), nil)
	c.Set(storedResult("settour", "https://b.example", now), nil)

	require.NoError(t, c.Clear("besttour"))
	assert.Nil(t, c.Get("besttour", "https://a.example", nil))
	assert.NotNil(t, c.Get("settour", "https://b.example", nil))

	require.NoError(t, c.Clear(""))
	assert.Nil(t, c.Get("settour", "https://b.example", nil))

	entries, _, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, entries)
}

func TestCache_StoredShapeIsCurrent(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := newTestCache(t, WithClock(func() time.Time { return now }))

	url := "https://example.com/shape"
	c.Set(storedResult("besttour", url, now), nil)

	data, err := os.ReadFile(filepath.Join(c.dir, Key("besttour", url, nil)+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"flight"`)
	assert.NotContains(t, string(data), `"extracted"`)
}
