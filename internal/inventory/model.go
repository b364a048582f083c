package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock status values, derived from units against the minimum threshold
// on every save and used as a report filter.
const (
	StatusInStock    = "in_stock"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"
)

// StockLevel tracks one product at one store.
type StockLevel struct {
	ID            int64
	ProfileID     int64
	ProductRegNo  int64
	StoreRegNo    int64
	Units         decimal.Decimal
	MinimumUnits  decimal.Decimal
	PriceOverride decimal.Decimal // zero means the catalog price applies
	IsSellable    bool
	Status        string
	UpdatedAt     time.Time
}

// DeriveStatus recomputes the stock status from units versus the
// minimum threshold. Untracked combinations never reach this point.
func DeriveStatus(units, minimum decimal.Decimal) string {
	switch {
	case units.Sign() <= 0:
		return StatusOutOfStock
	case units.Cmp(minimum) <= 0:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
