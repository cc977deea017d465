package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiontravel_SearchPrices(t *testing.T) {
	t.Parallel()
	p := &Liontravel{}
	raw := "東京自由行 TWD 21,999 TWD 25,500 機場稅 TWD 600"
	result := p.ParseRawText(raw, "https://vacation.liontravel.com/search", nil)

	require.NotNil(t, result.Price.PerPerson)
	assert.Equal(t, 21999, *result.Price.PerPerson)
	assert.Equal(t, "TWD", result.Price.Currency)
}

func TestLiontravel_DetailPrices(t *testing.T) {
	t.Parallel()
	raw := "總金額 TWD 43,998 TWD 21,999 人/起"
	price := liontravelPrice(raw)

	require.NotNil(t, price.Total)
	assert.Equal(t, 43998, *price.Total)
	require.NotNil(t, price.PerPerson)
	assert.Equal(t, 21999, *price.PerPerson)
}

func TestLiontravel_NoSizeableAmounts(t *testing.T) {
	t.Parallel()
	price := liontravelPrice("手續費 TWD 300")
	assert.Nil(t, price.PerPerson)
	assert.Nil(t, price.Total)
}

func TestLiontravel_DatesFromURL(t *testing.T) {
	t.Parallel()
	url := "https://vacation.liontravel.com/search?Destination=JP_TYO_6&FromDate=20260211&ToDate=20260215&Days=5&roomlist=2-0-0"
	dates := liontravelDatesFromURL(url)

	assert.Equal(t, "2026-02-11", dates.DepartureDate)
	assert.Equal(t, "2026-02-15", dates.ReturnDate)
	require.NotNil(t, dates.DurationDays)
	assert.Equal(t, 5, *dates.DurationDays)
}

func TestLiontravel_PlainURLHasNoDates(t *testing.T) {
	t.Parallel()
	dates := liontravelDatesFromURL("https://vacation.liontravel.com/detail/12345")
	assert.False(t, dates.IsPopulated())
}
