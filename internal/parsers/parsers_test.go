package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanggf8/travel-2026/internal/registry"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	want := []registry.Source{
		registry.Besttour, registry.Liontravel, registry.Lifetour,
		registry.Settour, registry.Tigerair, registry.Trip,
		registry.GoogleFlights, registry.Agoda, registry.EzTravel,
	}
	assert.Equal(t, want, r.Sources())

	for _, source := range want {
		p, err := r.Parser(source)
		require.NoError(t, err)
		assert.Equal(t, string(source), p.SourceID())
	}
}

func TestDefaultRegistry_PreparerCoverage(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	preparers := map[registry.Source]bool{
		registry.Besttour:      true,
		registry.Settour:       true,
		registry.Liontravel:    true,
		registry.GoogleFlights: true,
		registry.Agoda:         true,
		registry.Lifetour:      false,
		registry.Tigerair:      false,
		registry.Trip:          false,
		registry.EzTravel:      false,
	}
	for source, wantPreparer := range preparers {
		p, err := r.Parser(source)
		require.NoError(t, err)
		_, ok := p.(scraper.PagePreparer)
		assert.Equal(t, wantPreparer, ok, "source %s", source)
	}
}

func TestGeneric_ParsesNothing(t *testing.T) {
	t.Parallel()
	p := &Generic{}
	result := p.ParseRawText("arbitrary page text", "https://www.example.com/deal", nil)

	assert.Equal(t, "generic", result.SourceID)
	assert.Equal(t, "https://www.example.com/deal", result.URL)
	assert.False(t, result.Flight.IsPopulated())
	assert.False(t, result.Hotel.IsPopulated())
	assert.Nil(t, result.Price.PerPerson)
}

func TestAmount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 25900, amount("25,900"))
	assert.Equal(t, 600, amount("600"))
	assert.Zero(t, amount("n/a"))
}
