package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settourFlightText = `航班資訊
去程
出發日期 2026/2/13
台灣虎航 IT200
TPE 桃園機場 06:40
NRT 成田機場 10:45
回程
2026/2/17
台灣虎航 IT201
NRT 成田機場 11:45
TPE 桃園機場 14:50
飯店安排
東京灣喜來登大飯店 或同級
每日行程
第 1 天`

func TestSettour_ParseFlightBlocks(t *testing.T) {
	t.Parallel()
	p := &Settour{}
	result := p.ParseRawText(settourFlightText, "https://tour.settour.com.tw/product/X", nil)

	out := result.Flight.Outbound
	require.True(t, out.IsPopulated())
	assert.Equal(t, "IT200", out.FlightNumber)
	assert.Equal(t, "台灣虎航", out.Airline)
	assert.Equal(t, "TPE", out.DepartureCode)
	assert.Equal(t, "NRT", out.ArrivalCode)
	assert.Equal(t, "06:40", out.DepartureTime)
	assert.Equal(t, "10:45", out.ArrivalTime)
	assert.Equal(t, "2026/02/13", out.Date)

	ret := result.Flight.Return
	require.True(t, ret.IsPopulated())
	assert.Equal(t, "IT201", ret.FlightNumber)
	assert.Equal(t, "NRT", ret.DepartureCode)
	assert.Equal(t, "TPE", ret.ArrivalCode)
}

func TestSettour_FlightFallbackScan(t *testing.T) {
	t.Parallel()
	raw := `推薦航班
台灣虎航 IT 202
桃園 TPE 07:30 出發
抵達 KIX 11:10`
	info := settourFlights(raw)

	require.True(t, info.Outbound.IsPopulated())
	assert.Equal(t, "IT202", info.Outbound.FlightNumber)
	assert.Equal(t, "TPE", info.Outbound.DepartureCode)
	assert.Equal(t, "KIX", info.Outbound.ArrivalCode)
}

func TestSettour_Hotel(t *testing.T) {
	t.Parallel()
	raw := `飯店安排
東京灣喜來登大飯店 (Sheraton Grande Tokyo Bay) 或同級
每日行程`
	hotel := settourHotel(raw)

	assert.Equal(t, "東京灣喜來登大飯店", hotel.Name)
	assert.NotContains(t, hotel.Names, "同級")
}

func TestSettour_Price(t *testing.T) {
	t.Parallel()

	t.Run("labeled price wins", func(t *testing.T) {
		t.Parallel()
		price := settourPrice("售價 NT$28,900 其他 NT$99,000 訂金 $10,000")
		require.NotNil(t, price.PerPerson)
		assert.Equal(t, 28900, *price.PerPerson)
		assert.Equal(t, "TWD", price.Currency)
		require.NotNil(t, price.Deposit)
		assert.Equal(t, 10000, *price.Deposit)
	})

	t.Run("fallback to cheapest large amount", func(t *testing.T) {
		t.Parallel()
		price := settourPrice("NT$3,000 NT$31,900 NT$35,900")
		require.NotNil(t, price.PerPerson)
		assert.Equal(t, 31900, *price.PerPerson)
	})

	t.Run("nothing sizeable", func(t *testing.T) {
		t.Parallel()
		price := settourPrice("NT$500 NT$1,200")
		assert.Nil(t, price.PerPerson)
	})
}

func TestSettour_Dates(t *testing.T) {
	t.Parallel()
	dates := settourDates("東京5天4夜 出發日期：2026/02/13")

	require.NotNil(t, dates.DurationDays)
	assert.Equal(t, 5, *dates.DurationDays)
	assert.Equal(t, 4, *dates.DurationNights)
	require.NotNil(t, dates.Year)
	assert.Equal(t, 2026, *dates.Year)
	assert.Equal(t, 2, *dates.DepartureMonth)
	assert.Equal(t, 13, *dates.DepartureDay)
}

func TestSettour_ItineraryChineseMarkers(t *testing.T) {
	t.Parallel()
	raw := `第 1 天
桃園機場 成田機場
第 2 天
全日自由活動
注意事項
請攜帶護照`
	days := parseItinerary(raw, settourDayMarkerRe, "注意事項", "出團備註")

	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.True(t, days[1].IsFree)
}

func TestSettour_Inclusions(t *testing.T) {
	t.Parallel()
	raw := "包含旅行業責任保險 兩地機場稅 飯店早餐"
	assert.Equal(t,
		[]string{"travel_insurance", "airport_tax", "breakfast"},
		settourInclusions(raw))
}
