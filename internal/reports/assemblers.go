package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
	"github.com/tillpoint/tillpoint/internal/scope"
)

// BuildSummary assembles the top-level summary payload: aggregate
// totals plus the zero-filled time series. The aggregate margin rounds
// to a whole percent; series rows keep two decimals.
func BuildSummary(facts []LineFact, filters Filters, sc scope.AccessScope) SummaryPayload {
	total := NewTotals()
	for _, f := range facts {
		total.Add(f)
	}

	buckets := TimeBuckets(facts, filters)
	series := make([]BucketView, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, BucketView{
			Label:      b.Label,
			TotalsView: newTotalsView(b.Totals, false, sc.CanViewProfit),
		})
	}

	return SummaryPayload{
		TotalSalesData: newTotalsView(total, true, sc.CanViewProfit),
		SalesData:      series,
		Users:          sc.Users,
		Stores:         sc.Stores,
	}
}

// BuildUserReport groups facts by cashier. Names come from the resolved
// scope so an employee only ever sees labels they may know about.
func BuildUserReport(facts []LineFact, sc scope.AccessScope) []DimensionRow {
	names := make(map[int64]string, len(sc.Users))
	for _, u := range sc.Users {
		names[u.RegNo] = u.Name
	}
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.UserRegNo },
		func(f LineFact) string { return names[f.UserRegNo] })
	return dimensionRows(groups, sc.CanViewProfit)
}

// BuildCategoryReport groups facts by product category.
func BuildCategoryReport(facts []LineFact, names map[int64]string, sc scope.AccessScope) []DimensionRow {
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.CategoryRegNo },
		func(f LineFact) string { return names[f.CategoryRegNo] })
	return dimensionRows(groups, sc.CanViewProfit)
}

// BuildDiscountReport groups facts by the receipt-level discount.
func BuildDiscountReport(facts []LineFact, names map[int64]string, sc scope.AccessScope) []DimensionRow {
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.DiscountRegNo },
		func(f LineFact) string { return names[f.DiscountRegNo] })
	return dimensionRows(groups, sc.CanViewProfit)
}

// BuildTaxReport groups facts by the receipt-level tax.
func BuildTaxReport(facts []LineFact, names map[int64]string, sc scope.AccessScope) []DimensionRow {
	groups := GroupBy(facts,
		func(f LineFact) int64 { return f.TaxRegNo },
		func(f LineFact) string { return names[f.TaxRegNo] })
	return dimensionRows(groups, sc.CanViewProfit)
}

func dimensionRows(groups []Group, canViewProfit bool) []DimensionRow {
	rows := make([]DimensionRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, DimensionRow{
			RegNo:      g.Key,
			Name:       g.Label,
			ReportData: newTotalsView(g.Totals, false, canViewProfit),
		})
	}
	return rows
}

// BuildProductReport groups facts by product and rolls variant children
// up under their parent. The parent row aggregates its own lines plus
// every child's; children appear only inside variant_data.
func BuildProductReport(facts []LineFact, parentNames map[int64]string, sc scope.AccessScope) []ProductRow {
	top := newGroupSet()
	children := make(map[int64]*groupSet)

	for _, f := range facts {
		if f.ProductRegNo == 0 {
			continue
		}
		if f.ParentRegNo != 0 {
			label := parentNames[f.ParentRegNo]
			top.add(f.ParentRegNo, label, f)
			set, ok := children[f.ParentRegNo]
			if !ok {
				set = newGroupSet()
				children[f.ParentRegNo] = set
			}
			set.add(f.ProductRegNo, f.ProductName, f)
			continue
		}
		top.add(f.ProductRegNo, f.ProductName, f)
	}

	groups := top.sorted()
	rows := make([]ProductRow, 0, len(groups))
	for _, g := range groups {
		row := ProductRow{
			RegNo:      g.Key,
			Name:       g.Label,
			ReportData: newTotalsView(g.Totals, false, sc.CanViewProfit),
		}
		if set, ok := children[g.Key]; ok {
			row.IsVariant = true
			row.VariantData = dimensionRows(set.sorted(), sc.CanViewProfit)
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildPaymentReport groups payment facts by method, ordered descending
// by amount, and appends a synthetic "Total" row. Refund payments
// subtract from their method's amount.
func BuildPaymentReport(facts []PaymentFact) []PaymentRow {
	type paymentGroup struct {
		regNo  int64
		name   string
		amount decimal.Decimal
		seen   map[int64]struct{}
		order  int
	}
	groups := make(map[int64]*paymentGroup)

	for _, f := range facts {
		g, ok := groups[f.MethodRegNo]
		if !ok {
			g = &paymentGroup{regNo: f.MethodRegNo, name: f.MethodName, seen: make(map[int64]struct{}), order: len(groups)}
			groups[f.MethodRegNo] = g
		}
		if f.IsRefund {
			g.amount = g.amount.Sub(f.Amount)
		} else {
			g.amount = g.amount.Add(f.Amount)
		}
		g.seen[f.ReceiptRegNo] = struct{}{}
	}

	ordered := make([]*paymentGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		cmp := ordered[i].amount.Cmp(ordered[j].amount)
		if cmp != 0 {
			return cmp > 0
		}
		return ordered[i].order < ordered[j].order
	})

	rows := make([]PaymentRow, 0, len(ordered)+1)
	total := decimal.Zero
	count := 0
	for _, g := range ordered {
		rows = append(rows, PaymentRow{
			RegNo:  g.regNo,
			Name:   g.name,
			Amount: money.Format(g.amount),
			Count:  len(g.seen),
		})
		total = total.Add(g.amount)
		count += len(g.seen)
	}
	rows = append(rows, PaymentRow{Name: "Total", Amount: money.Format(total), Count: count})
	return rows
}

// BuildModifierReport groups modifier facts by modifier. Refunded
// options subtract from both quantity and amount.
func BuildModifierReport(facts []ModifierFact) []ModifierRow {
	type modifierGroup struct {
		regNo    int64
		name     string
		quantity decimal.Decimal
		amount   decimal.Decimal
		order    int
	}
	groups := make(map[int64]*modifierGroup)

	for _, f := range facts {
		g, ok := groups[f.ModifierRegNo]
		if !ok {
			g = &modifierGroup{regNo: f.ModifierRegNo, name: f.ModifierName, order: len(groups)}
			groups[f.ModifierRegNo] = g
		}
		amount := f.Amount.Mul(f.Units)
		if f.IsRefund {
			g.quantity = g.quantity.Sub(f.Units)
			g.amount = g.amount.Sub(amount)
		} else {
			g.quantity = g.quantity.Add(f.Units)
			g.amount = g.amount.Add(amount)
		}
	}

	ordered := make([]*modifierGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		cmp := ordered[i].amount.Cmp(ordered[j].amount)
		if cmp != 0 {
			return cmp > 0
		}
		return ordered[i].order < ordered[j].order
	})

	rows := make([]ModifierRow, 0, len(ordered))
	for _, g := range ordered {
		rows = append(rows, ModifierRow{
			RegNo:    g.regNo,
			Name:     g.name,
			Quantity: g.quantity.StringFixed(2),
			Amount:   money.Format(g.amount),
		})
	}
	return rows
}
