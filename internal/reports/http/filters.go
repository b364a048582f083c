package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/reports"
)

const dateLayout = "2006-01-02"

// parseQuery validates the common report query parameters. Malformed
// values produce field-tagged validation errors; unknown reg_no values
// pass through and narrow to empty results downstream.
func parseQuery(r *http.Request) (reports.Query, httpx.FieldErrors) {
	q := reports.Query{}
	fields := httpx.FieldErrors{}
	values := r.URL.Query()

	if raw := values.Get("date_after"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			fields.Add("date", "Enter a valid date.")
		} else {
			q.After = t
		}
	}
	if raw := values.Get("date_before"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			fields.Add("date", "Enter a valid date.")
		} else {
			// the report window's upper bound is exclusive
			q.Before = t.AddDate(0, 0, 1)
		}
	}

	q.StoreRegNos = parseRegNoList(values.Get("store_reg_no"), "store_reg_no", fields)
	q.UserRegNos = parseRegNoList(values.Get("user_reg_no"), "user_reg_no", fields)

	q.CategoryRegNo = parseRegNo(values.Get("category__reg_no"), "category__reg_no", fields)
	q.DiscountRegNo = parseRegNo(values.Get("discount__reg_no"), "discount__reg_no", fields)
	q.TaxRegNo = parseRegNo(values.Get("tax__reg_no"), "tax__reg_no", fields)
	q.ProductRegNo = parseRegNo(values.Get("product__reg_no"), "product__reg_no", fields)

	if raw := values.Get("is_bundle"); raw != "" {
		switch raw {
		case "true", "True", "1":
			v := true
			q.IsBundle = &v
		case "false", "False", "0":
			v := false
			q.IsBundle = &v
		default:
			fields.Add("is_bundle", "Must be a valid boolean.")
		}
	}
	q.StockStatus = values.Get("stocklevel__status")

	return q, fields
}

func parseRegNoList(raw, field string, fields httpx.FieldErrors) []int64 {
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			fields.Add(field, "Enter a number.")
			return nil
		}
		out = append(out, v)
	}
	return out
}

func parseRegNo(raw, field string, fields httpx.FieldErrors) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fields.Add(field, "Enter a number.")
		return 0
	}
	return v
}
