package sales

import (
	"time"

	"github.com/tillpoint/tillpoint/internal/money"
)

type LineView struct {
	ProductRegNo int64  `json:"product_reg_no"`
	ProductName  string `json:"product_name"`
	Price        string `json:"price"`
	Units        string `json:"units"`
	GrossTotal   string `json:"gross_total"`
	Refunded     string `json:"refunded_units"`
}

type PaymentView struct {
	MethodRegNo int64  `json:"payment_method_reg_no"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
}

type ReceiptView struct {
	RegNo          int64         `json:"reg_no"`
	ReceiptCode    string        `json:"receipt_code"`
	StoreRegNo     int64         `json:"store_reg_no"`
	UserRegNo      int64         `json:"user_reg_no"`
	SaleType       string        `json:"sale_type"`
	Timestamp      time.Time     `json:"timestamp"`
	Subtotal       string        `json:"subtotal_amount"`
	DiscountAmount string        `json:"discount_amount"`
	TaxAmount      string        `json:"tax_amount"`
	Total          string        `json:"total_amount"`
	OriginalRegNo  int64         `json:"original_reg_no,omitempty"`
	Lines          []LineView    `json:"receipt_lines,omitempty"`
	Payments       []PaymentView `json:"payments,omitempty"`
}

func newReceiptView(r Receipt) ReceiptView {
	view := ReceiptView{
		RegNo:          r.RegNo,
		ReceiptCode:    r.ReceiptCode,
		StoreRegNo:     r.StoreRegNo,
		UserRegNo:      r.UserRegNo,
		SaleType:       r.SaleType(),
		Timestamp:      r.Timestamp,
		Subtotal:       money.Format(r.Subtotal),
		DiscountAmount: money.Format(r.DiscountAmount),
		TaxAmount:      money.Format(r.TaxAmount),
		Total:          money.Format(r.Total),
		OriginalRegNo:  r.OriginalRegNo,
	}
	for _, l := range r.Lines {
		view.Lines = append(view.Lines, LineView{
			ProductRegNo: l.ProductRegNo,
			ProductName:  l.ProductName,
			Price:        money.Format(l.Price),
			Units:        l.Units.StringFixed(2),
			GrossTotal:   money.Format(l.GrossTotal),
			Refunded:     l.RefundedUnits.StringFixed(2),
		})
	}
	for _, p := range r.Payments {
		view.Payments = append(view.Payments, PaymentView{
			MethodRegNo: p.MethodRegNo,
			Name:        p.MethodName,
			Amount:      money.Format(p.Amount),
		})
	}
	return view
}
