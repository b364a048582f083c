package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. A product is exactly one of simple,
// bundle, variant parent, or variant child; the service enforces that
// invariant on every write.
type Product struct {
	ID              int64
	ProfileID       int64
	RegNo           int64
	Name            string
	Barcode         string
	Price           decimal.Decimal
	Cost            decimal.Decimal
	CategoryRegNo   int64 // 0 when uncategorised
	TaxRegNo        int64 // 0 when untaxed
	IsBundle        bool
	IsTransformable bool
	IsVariantChild  bool
	TrackStock      bool
	ParentRegNo     int64 // set only on variant children
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BundleComponent is one (component, quantity) pair of a bundle
// composition, ordered by insertion.
type BundleComponent struct {
	ComponentRegNo int64
	ComponentName  string
	Quantity       decimal.Decimal
}

// TransformMapEntry describes how many component units one parent unit
// converts to (forward direction). The reverse direction is derived from
// current stock, never stored.
type TransformMapEntry struct {
	ComponentRegNo  int64
	ComponentName   string
	Quantity        decimal.Decimal
	IsAutoRepackage bool
}
