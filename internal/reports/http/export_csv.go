package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/reports"
	"github.com/tillpoint/tillpoint/internal/shared"
)

// SummaryCSV streams the summary report as a CSV download: one header
// block with the aggregate totals, then the time series rows.
func (h *Handler) SummaryCSV(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	payload, err := h.service.Summary(r.Context(), p, q)
	if err != nil {
		h.logger.Error("summary export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("sales-summary-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	rows := [][]string{
		{"Metric", "Value"},
		{"Gross sales", payload.TotalSalesData.GrossSales},
		{"Net sales", payload.TotalSalesData.NetSales},
		{"Discounts", payload.TotalSalesData.Discounts},
		{"Taxes", payload.TotalSalesData.Taxes},
		{"Costs", payload.TotalSalesData.Costs},
		{"Profits", payload.TotalSalesData.Profits},
		{"Margin", payload.TotalSalesData.Margin},
		{"Refunds", payload.TotalSalesData.Refunds},
		{},
		{"Period", "Gross sales", "Net sales", "Discounts", "Taxes", "Costs", "Profits", "Margin", "Refunds"},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			h.logger.Error("summary export write", slog.Any("error", err))
			return
		}
	}
	for _, b := range seriesRows(payload) {
		if err := writer.Write(b); err != nil {
			h.logger.Error("summary export write", slog.Any("error", err))
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("summary export flush", slog.Any("error", err))
	}
}

func seriesRows(payload reports.SummaryPayload) [][]string {
	out := make([][]string, 0, len(payload.SalesData))
	for _, b := range payload.SalesData {
		out = append(out, []string{
			b.Label,
			b.GrossSales,
			b.NetSales,
			b.Discounts,
			b.Taxes,
			b.Costs,
			b.Profits,
			b.Margin,
			b.Refunds,
		})
	}
	return out
}
