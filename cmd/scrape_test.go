package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanggf8/travel-2026/internal/parsers"
)

func TestResolveParser(t *testing.T) {
	reg := parsers.DefaultRegistry()

	p, err := resolveParser(reg, "", "https://www.besttour.com.tw/e_web/itinerary/TYO5D.html")
	require.NoError(t, err)
	assert.Equal(t, "besttour", p.SourceID())

	// A forced source overrides URL detection.
	p, err = resolveParser(reg, "tigerair", "https://www.besttour.com.tw/x")
	require.NoError(t, err)
	assert.Equal(t, "tigerair", p.SourceID())

	// Unknown sites drop to the generic scrape instead of erroring.
	p, err = resolveParser(reg, "", "https://www.example.com/travel-deal")
	require.NoError(t, err)
	assert.Equal(t, "generic", p.SourceID())

	// A forced unknown source is still an error.
	_, err = resolveParser(reg, "nonexistent", "https://www.example.com")
	assert.Error(t, err)
}
