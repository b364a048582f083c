package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineFact is one receipt line joined with its parent receipt,
// flattened for aggregation. Receipt-level discount and tax amounts are
// repeated on every line of the receipt; accumulators count them once
// per receipt.
type LineFact struct {
	ReceiptRegNo    int64
	Timestamp       time.Time
	StoreRegNo      int64
	UserRegNo       int64
	DiscountRegNo   int64
	TaxRegNo        int64
	ReceiptDiscount decimal.Decimal
	ReceiptTax      decimal.Decimal
	IsRefund        bool

	ProductRegNo  int64
	ParentRegNo   int64
	ProductName   string
	CategoryRegNo int64
	IsBundle      bool
	Units         decimal.Decimal
	Gross         decimal.Decimal
	Cost          decimal.Decimal
}

// PaymentFact is one receipt payment joined with its parent receipt.
type PaymentFact struct {
	ReceiptRegNo int64
	Timestamp    time.Time
	StoreRegNo   int64
	UserRegNo    int64
	MethodRegNo  int64
	MethodName   string
	Amount       decimal.Decimal
	IsRefund     bool
}

// ModifierFact is one applied modifier option joined with its line's
// parent receipt.
type ModifierFact struct {
	ReceiptRegNo  int64
	Timestamp     time.Time
	StoreRegNo    int64
	UserRegNo     int64
	ModifierRegNo int64
	ModifierName  string
	OptionName    string
	Units         decimal.Decimal
	Amount        decimal.Decimal
	IsRefund      bool
}

// Filters is the resolved query window a report runs over. Store and
// user lists arrive already narrowed to the caller's scope; empty
// slices mean nothing is visible and must produce zeroed payloads.
type Filters struct {
	After       time.Time // inclusive
	Before      time.Time // exclusive
	StoreRegNos []int64
	UserRegNos  []int64

	CategoryRegNo int64
	DiscountRegNo int64
	TaxRegNo      int64
	ProductRegNo  int64
	IsBundle      *bool
	StockStatus   string
}

// SingleDay reports whether the window covers exactly one calendar day,
// which switches the time series from daily to hourly buckets.
func (f Filters) SingleDay() bool {
	return !f.After.IsZero() && !f.Before.IsZero() && !f.Before.After(f.After.AddDate(0, 0, 1))
}

// Totals accumulates the double-entry running sums of one group. Sales
// add to gross; refunds accumulate separately and reduce net only.
type Totals struct {
	GrossSales decimal.Decimal
	Discounts  decimal.Decimal
	Taxes      decimal.Decimal
	Costs      decimal.Decimal
	Refunds    decimal.Decimal
	ItemsSold  decimal.Decimal

	SaleCount   int
	RefundCount int

	seenSales   map[int64]struct{}
	seenRefunds map[int64]struct{}
}

func NewTotals() *Totals {
	return &Totals{
		seenSales:   make(map[int64]struct{}),
		seenRefunds: make(map[int64]struct{}),
	}
}

// Add folds one line fact into the running totals.
func (t *Totals) Add(f LineFact) {
	if f.IsRefund {
		t.Refunds = t.Refunds.Add(f.Gross)
		t.Costs = t.Costs.Sub(f.Cost)
		t.ItemsSold = t.ItemsSold.Sub(f.Units)
		if _, ok := t.seenRefunds[f.ReceiptRegNo]; !ok {
			t.seenRefunds[f.ReceiptRegNo] = struct{}{}
			t.RefundCount++
		}
		return
	}

	t.GrossSales = t.GrossSales.Add(f.Gross)
	t.Costs = t.Costs.Add(f.Cost)
	t.ItemsSold = t.ItemsSold.Add(f.Units)
	if _, ok := t.seenSales[f.ReceiptRegNo]; !ok {
		t.seenSales[f.ReceiptRegNo] = struct{}{}
		t.SaleCount++
		t.Discounts = t.Discounts.Add(f.ReceiptDiscount)
		t.Taxes = t.Taxes.Add(f.ReceiptTax)
	}
}

// NetSales is gross less discounts, taxes and refunds.
func (t *Totals) NetSales() decimal.Decimal {
	return t.GrossSales.Sub(t.Discounts).Sub(t.Taxes).Sub(t.Refunds)
}

// Profit is net sales less accumulated cost.
func (t *Totals) Profit() decimal.Decimal {
	return t.NetSales().Sub(t.Costs)
}
