package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is one completed POS transaction, either a sale or a refund.
// A refund always references the receipt whose lines it reverses.
type Receipt struct {
	ID             int64
	ProfileID      int64
	RegNo          int64
	ReceiptCode    string // opaque uuid printed on the customer receipt
	StoreRegNo     int64
	UserRegNo      int64
	DiscountRegNo  int64 // 0 when no discount applied
	TaxRegNo       int64 // 0 when untaxed
	Timestamp      time.Time
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	IsRefund       bool
	OriginalRegNo  int64 // set only on refunds

	Lines    []Line
	Payments []Payment
}

// SaleType reports "Sale" or "Refund" for display and grouping.
func (r Receipt) SaleType() string {
	if r.IsRefund || r.OriginalRegNo != 0 {
		return "Refund"
	}
	return "Sale"
}

// Line is one receipt position. Name, category, parent product, unit
// price and total cost are snapshots taken at sale time; later catalog
// edits never change historical lines.
type Line struct {
	ID            int64
	ReceiptID     int64
	ProductRegNo  int64
	ParentRegNo   int64 // variant parent at sale time, 0 otherwise
	ProductName   string
	CategoryRegNo int64
	IsBundle      bool
	Price         decimal.Decimal
	Units         decimal.Decimal
	GrossTotal    decimal.Decimal
	CostTotal     decimal.Decimal
	RefundedUnits decimal.Decimal

	Modifiers []LineModifier
}

// LineModifier is one applied modifier option, snapshotted by name so
// the modifier report survives later edits.
type LineModifier struct {
	ID            int64
	LineID        int64
	ModifierRegNo int64
	ModifierName  string
	OptionName    string
	Amount        decimal.Decimal
}

// Payment is one tender of a receipt's payment breakdown.
type Payment struct {
	ID          int64
	ReceiptID   int64
	MethodRegNo int64
	MethodName  string
	Amount      decimal.Decimal
}
