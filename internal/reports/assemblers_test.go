package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/scope"
)

// fixtureFacts reproduces the reference scenario: two sale receipts and
// one partial refund across a two-store tenant.
func fixtureFacts() []LineFact {
	ts := day("2024-03-05").Add(9 * time.Hour)
	return []LineFact{
		{
			ReceiptRegNo: 1, Timestamp: ts, StoreRegNo: 1, UserRegNo: 5,
			DiscountRegNo: 3, ReceiptDiscount: dec("1804"),
			ProductRegNo: 11, ProductName: "Espresso Machine", CategoryRegNo: 7,
			Units: dec("1"), Gross: dec("120000"), Cost: dec("60000"),
		},
		{
			ReceiptRegNo: 2, Timestamp: ts.Add(2 * time.Hour), StoreRegNo: 2, UserRegNo: 5,
			TaxRegNo: 4, ReceiptTax: dec("259"),
			ProductRegNo: 12, ProductName: "Grinder", CategoryRegNo: 7,
			Units: dec("1"), Gross: dec("70229"), Cost: dec("20000"),
		},
		{
			ReceiptRegNo: 3, Timestamp: ts.Add(5 * time.Hour), StoreRegNo: 1, UserRegNo: 5,
			IsRefund:     true,
			ProductRegNo: 11, ProductName: "Espresso Machine", CategoryRegNo: 7,
			Units: dec("1"), Gross: dec("45929"), Cost: dec("5000"),
		},
	}
}

func fixtureScope() scope.AccessScope {
	return scope.AccessScope{
		Stores: []scope.StoreRef{
			{RegNo: 1, Name: "Downtown"},
			{RegNo: 2, Name: "Harbour"},
		},
		Users: []scope.UserRef{
			{RegNo: 5, Name: "casual cashier"},
		},
		CanViewProfit: true,
	}
}

func TestSummaryFixtureTotals(t *testing.T) {
	filters := Filters{After: day("2024-03-05"), Before: day("2024-03-06")}
	payload := BuildSummary(fixtureFacts(), filters, fixtureScope())

	total := payload.TotalSalesData
	assert.Equal(t, "190229.00", total.GrossSales)
	assert.Equal(t, "1804.00", total.Discounts)
	assert.Equal(t, "259.00", total.Taxes)
	assert.Equal(t, "45929.00", total.Refunds)
	assert.Equal(t, "142237.00", total.NetSales)
	assert.Equal(t, "75000.00", total.Costs)
	assert.Equal(t, "67237.00", total.Profits)
	// aggregate margin rounds to a whole percent
	assert.Equal(t, "47", total.Margin)
	assert.Equal(t, 2, total.ReceiptsCount)
	assert.Equal(t, 1, total.RefundsCount)

	require.Len(t, payload.SalesData, 24)
	nine := payload.SalesData[9]
	assert.Equal(t, "09:00:AM", nine.Label)
	assert.Equal(t, "120000.00", nine.GrossSales)
	// series rows keep two margin decimals
	assert.Contains(t, nine.Margin, ".")

	assert.Equal(t, fixtureScope().Users, payload.Users)
	assert.Equal(t, fixtureScope().Stores, payload.Stores)
}

func TestSummaryHidesProfitWhenNotPermitted(t *testing.T) {
	sc := fixtureScope()
	sc.CanViewProfit = false
	filters := Filters{After: day("2024-03-05"), Before: day("2024-03-06")}

	payload := BuildSummary(fixtureFacts(), filters, sc)
	assert.Equal(t, "0.00", payload.TotalSalesData.Costs)
	assert.Equal(t, "0.00", payload.TotalSalesData.Profits)
	assert.Equal(t, "0", payload.TotalSalesData.Margin)
	// revenue fields stay visible
	assert.Equal(t, "142237.00", payload.TotalSalesData.NetSales)
}

func TestUserReportUsesScopeNames(t *testing.T) {
	rows := BuildUserReport(fixtureFacts(), fixtureScope())
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].RegNo)
	assert.Equal(t, "casual cashier", rows[0].Name)
	assert.Equal(t, "142237.00", rows[0].ReportData.NetSales)
}

func TestCategoryReportGroupsAndLabels(t *testing.T) {
	names := map[int64]string{7: "Coffee Gear"}
	rows := BuildCategoryReport(fixtureFacts(), names, fixtureScope())
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee Gear", rows[0].Name)
	assert.Equal(t, "190229.00", rows[0].ReportData.GrossSales)
}

func TestDiscountReportOmitsUndiscounted(t *testing.T) {
	names := map[int64]string{3: "Opening Promo"}
	rows := BuildDiscountReport(fixtureFacts(), names, fixtureScope())
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].RegNo)
	assert.Equal(t, "Opening Promo", rows[0].Name)
	assert.Equal(t, "1804.00", rows[0].ReportData.Discounts)
}

func TestTaxReportGroupsByReceiptTax(t *testing.T) {
	names := map[int64]string{4: "VAT"}
	rows := BuildTaxReport(fixtureFacts(), names, fixtureScope())
	require.Len(t, rows, 1)
	assert.Equal(t, "VAT", rows[0].Name)
	assert.Equal(t, "259.00", rows[0].ReportData.Taxes)
}

func TestProductReportRollsUpVariants(t *testing.T) {
	facts := []LineFact{
		{ReceiptRegNo: 1, ProductRegNo: 21, ParentRegNo: 20, ProductName: "Shirt / S", Units: dec("2"), Gross: dec("100")},
		{ReceiptRegNo: 2, ProductRegNo: 22, ParentRegNo: 20, ProductName: "Shirt / L", Units: dec("1"), Gross: dec("60")},
		{ReceiptRegNo: 3, ProductRegNo: 30, ProductName: "Mug", Units: dec("1"), Gross: dec("40")},
	}
	parents := map[int64]string{20: "Shirt"}

	rows := BuildProductReport(facts, parents, fixtureScope())
	require.Len(t, rows, 2)

	shirt := rows[0]
	assert.Equal(t, int64(20), shirt.RegNo)
	assert.Equal(t, "Shirt", shirt.Name)
	assert.True(t, shirt.IsVariant)
	assert.Equal(t, "160.00", shirt.ReportData.NetSales)
	require.Len(t, shirt.VariantData, 2)
	assert.Equal(t, "Shirt / S", shirt.VariantData[0].Name)
	assert.Equal(t, "100.00", shirt.VariantData[0].ReportData.NetSales)

	mug := rows[1]
	assert.Equal(t, int64(30), mug.RegNo)
	assert.False(t, mug.IsVariant)
	assert.Empty(t, mug.VariantData)
}

func TestPaymentReportAppendsTotalRow(t *testing.T) {
	ts := day("2024-03-05")
	facts := []PaymentFact{
		{ReceiptRegNo: 1, Timestamp: ts, MethodRegNo: 1, MethodName: "Cash", Amount: dec("100")},
		{ReceiptRegNo: 2, Timestamp: ts, MethodRegNo: 2, MethodName: "Card", Amount: dec("250")},
		{ReceiptRegNo: 3, Timestamp: ts, MethodRegNo: 1, MethodName: "Cash", Amount: dec("30"), IsRefund: true},
	}
	rows := BuildPaymentReport(facts)

	require.Len(t, rows, 3)
	assert.Equal(t, "Card", rows[0].Name)
	assert.Equal(t, "250.00", rows[0].Amount)
	assert.Equal(t, "Cash", rows[1].Name)
	assert.Equal(t, "70.00", rows[1].Amount)

	total := rows[2]
	assert.Equal(t, "Total", total.Name)
	assert.Equal(t, "320.00", total.Amount)
	assert.Equal(t, 3, total.Count)
}

func TestModifierReportNetsRefunds(t *testing.T) {
	ts := day("2024-03-05")
	facts := []ModifierFact{
		{ReceiptRegNo: 1, Timestamp: ts, ModifierRegNo: 9, ModifierName: "Extra Shot", OptionName: "Double", Units: dec("2"), Amount: dec("500")},
		{ReceiptRegNo: 2, Timestamp: ts, ModifierRegNo: 9, ModifierName: "Extra Shot", OptionName: "Double", Units: dec("1"), Amount: dec("500"), IsRefund: true},
	}
	rows := BuildModifierReport(facts)

	require.Len(t, rows, 1)
	assert.Equal(t, "Extra Shot", rows[0].Name)
	assert.Equal(t, "1.00", rows[0].Quantity)
	assert.Equal(t, "500.00", rows[0].Amount)
}
