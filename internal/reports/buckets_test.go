package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func saleFact(receipt int64, ts time.Time, gross, cost string) LineFact {
	return LineFact{
		ReceiptRegNo: receipt,
		Timestamp:    ts,
		StoreRegNo:   1,
		UserRegNo:    1,
		ProductRegNo: 1,
		Units:        dec("1"),
		Gross:        dec(gross),
		Cost:         dec(cost),
	}
}

func TestSingleDayProducesHourlyBuckets(t *testing.T) {
	after := day("2024-03-05")
	filters := Filters{After: after, Before: after.AddDate(0, 0, 1)}

	facts := []LineFact{
		saleFact(1, after.Add(3*time.Hour+12*time.Minute), "100", "40"),
		saleFact(2, after.Add(15*time.Hour), "50", "20"),
	}
	buckets := TimeBuckets(facts, filters)

	require.Len(t, buckets, 24)
	assert.Equal(t, "12:00:AM", buckets[0].Label)
	assert.Equal(t, "03:00:AM", buckets[3].Label)
	assert.Equal(t, "03:00:PM", buckets[15].Label)
	assert.Equal(t, "11:00:PM", buckets[23].Label)

	assert.True(t, buckets[3].Totals.GrossSales.Equal(dec("100")))
	assert.True(t, buckets[15].Totals.GrossSales.Equal(dec("50")))
	// empty slots stay present, zero-filled
	assert.True(t, buckets[7].Totals.GrossSales.IsZero())
}

func TestMultiDayProducesDailyBucketsAscending(t *testing.T) {
	filters := Filters{After: day("2024-03-01"), Before: day("2024-03-06")}

	facts := []LineFact{
		saleFact(1, day("2024-03-02").Add(10*time.Hour), "100", "40"),
		saleFact(2, day("2024-03-05").Add(20*time.Hour), "70", "30"),
	}
	buckets := TimeBuckets(facts, filters)

	require.Len(t, buckets, 5)
	assert.Equal(t, "2024-03-01", buckets[0].Label)
	assert.Equal(t, "2024-03-05", buckets[4].Label)
	assert.True(t, buckets[0].Totals.GrossSales.IsZero())
	assert.True(t, buckets[1].Totals.GrossSales.Equal(dec("100")))
	assert.True(t, buckets[4].Totals.GrossSales.Equal(dec("70")))
}

func TestFactOutsideWindowIgnored(t *testing.T) {
	after := day("2024-03-05")
	filters := Filters{After: after, Before: after.AddDate(0, 0, 1)}
	facts := []LineFact{saleFact(1, day("2024-03-08"), "999", "0")}

	buckets := TimeBuckets(facts, filters)
	for _, b := range buckets {
		assert.True(t, b.Totals.GrossSales.IsZero())
	}
}

func TestGroupByOrdersByNetDescending(t *testing.T) {
	facts := []LineFact{
		{ReceiptRegNo: 1, CategoryRegNo: 10, Units: dec("1"), Gross: dec("50")},
		{ReceiptRegNo: 2, CategoryRegNo: 20, Units: dec("1"), Gross: dec("200")},
		{ReceiptRegNo: 3, CategoryRegNo: 30, Units: dec("1"), Gross: dec("120")},
	}
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.CategoryRegNo },
		func(f LineFact) string { return "" })

	require.Len(t, groups, 3)
	assert.Equal(t, int64(20), groups[0].Key)
	assert.Equal(t, int64(30), groups[1].Key)
	assert.Equal(t, int64(10), groups[2].Key)
}

func TestGroupByTiesBreakByFirstSeen(t *testing.T) {
	facts := []LineFact{
		{ReceiptRegNo: 1, CategoryRegNo: 30, Units: dec("1"), Gross: dec("100")},
		{ReceiptRegNo: 2, CategoryRegNo: 10, Units: dec("1"), Gross: dec("100")},
	}
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.CategoryRegNo },
		func(f LineFact) string { return "" })

	require.Len(t, groups, 2)
	assert.Equal(t, int64(30), groups[0].Key)
	assert.Equal(t, int64(10), groups[1].Key)
}

func TestGroupByOmitsZeroKeys(t *testing.T) {
	facts := []LineFact{
		{ReceiptRegNo: 1, CategoryRegNo: 0, Units: dec("1"), Gross: dec("100")},
		{ReceiptRegNo: 2, CategoryRegNo: 10, Units: dec("1"), Gross: dec("40")},
	}
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.CategoryRegNo },
		func(f LineFact) string { return "" })

	require.Len(t, groups, 1)
	assert.Equal(t, int64(10), groups[0].Key)
}

func TestTotalsCountsReceiptLevelAmountsOnce(t *testing.T) {
	total := NewTotals()
	// two lines of the same receipt carry the same receipt-level discount
	total.Add(LineFact{ReceiptRegNo: 1, Units: dec("1"), Gross: dec("100"), ReceiptDiscount: dec("10")})
	total.Add(LineFact{ReceiptRegNo: 1, Units: dec("1"), Gross: dec("200"), ReceiptDiscount: dec("10")})

	assert.True(t, total.Discounts.Equal(dec("10")))
	assert.Equal(t, 1, total.SaleCount)
	assert.True(t, total.NetSales().Equal(dec("290")))
}

func TestRefundsAccumulateSeparately(t *testing.T) {
	total := NewTotals()
	total.Add(LineFact{ReceiptRegNo: 1, Units: dec("2"), Gross: dec("100"), Cost: dec("60")})
	total.Add(LineFact{ReceiptRegNo: 2, Units: dec("1"), Gross: dec("40"), Cost: dec("25"), IsRefund: true})

	assert.True(t, total.GrossSales.Equal(dec("100")))
	assert.True(t, total.Refunds.Equal(dec("40")))
	assert.True(t, total.NetSales().Equal(dec("60")))
	assert.True(t, total.Costs.Equal(dec("35")))
	assert.Equal(t, 1, total.SaleCount)
	assert.Equal(t, 1, total.RefundCount)
}
