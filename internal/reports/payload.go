package reports

import (
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
	"github.com/tillpoint/tillpoint/internal/scope"
)

// TotalsView is the serialised form of a Totals accumulation. All money
// fields are fixed 2-decimal strings; absent activity serialises as
// "0.00", never as a missing key.
type TotalsView struct {
	GrossSales    string `json:"gross_sales"`
	NetSales      string `json:"net_sales"`
	Discounts     string `json:"discounts"`
	Taxes         string `json:"taxes"`
	Costs         string `json:"costs"`
	Profits       string `json:"profits"`
	Margin        string `json:"margin"`
	Refunds       string `json:"refunds"`
	ItemsSold     string `json:"items_sold"`
	ReceiptsCount int    `json:"receipts_count"`
	RefundsCount  int    `json:"refunds_count"`
}

// newTotalsView serialises totals. wholeMargin switches the margin to a
// whole percent, used by the summary's aggregate block only. When
// profit visibility is off, costs, profits and margin are zeroed.
func newTotalsView(t *Totals, wholeMargin, canViewProfit bool) TotalsView {
	net := t.NetSales()
	view := TotalsView{
		GrossSales:    money.Format(t.GrossSales),
		NetSales:      money.Format(net),
		Discounts:     money.Format(t.Discounts),
		Taxes:         money.Format(t.Taxes),
		Costs:         money.Format(t.Costs),
		Refunds:       money.Format(t.Refunds),
		ItemsSold:     t.ItemsSold.StringFixed(2),
		ReceiptsCount: t.SaleCount,
		RefundsCount:  t.RefundCount,
	}
	if !canViewProfit {
		view.Costs = money.Format(decimal.Zero)
		view.Profits = money.Format(decimal.Zero)
		view.Margin = "0"
		return view
	}
	profit := t.Profit()
	view.Profits = money.Format(profit)
	if wholeMargin {
		view.Margin = money.MarginWhole(profit, net).String()
	} else {
		view.Margin = money.Margin(profit, net).StringFixed(2)
	}
	return view
}

// BucketView is one time slot of the summary series.
type BucketView struct {
	Label string `json:"label"`
	TotalsView
}

// SummaryPayload is the top-level summary report shape.
type SummaryPayload struct {
	TotalSalesData TotalsView       `json:"total_sales_data"`
	SalesData      []BucketView     `json:"sales_data"`
	Users          []scope.UserRef  `json:"users"`
	Stores         []scope.StoreRef `json:"stores"`
}

// DimensionRow is one group of a per-dimension report, with its sums
// nested under report_data.
type DimensionRow struct {
	RegNo      int64      `json:"reg_no"`
	Name       string     `json:"name"`
	ReportData TotalsView `json:"report_data"`
}

// ProductRow extends DimensionRow with the variant roll-up. Variant
// children never appear as top-level rows.
type ProductRow struct {
	RegNo       int64          `json:"reg_no"`
	Name        string         `json:"name"`
	IsVariant   bool           `json:"is_variant"`
	VariantData []DimensionRow `json:"variant_data,omitempty"`
	ReportData  TotalsView     `json:"report_data"`
}

// PaymentRow is one payment-method group. The report appends a
// synthetic "Total" row summing all groups.
type PaymentRow struct {
	RegNo  int64  `json:"reg_no"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

// ModifierRow is one modifier group.
type ModifierRow struct {
	RegNo    int64  `json:"reg_no"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Amount   string `json:"amount"`
}
