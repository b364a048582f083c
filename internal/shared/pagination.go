package shared

import (
	"net/http"
	"strconv"
)

// DefaultPageSize bounds listing and report pages.
const DefaultPageSize = 10

// Envelope is the paginated payload shape shared by listing and report
// endpoints: {count, next, previous, results}.
type Envelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// PageFromRequest reads the ?page= parameter, defaulting to 1.
func PageFromRequest(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate slices items for the requested page and fills the envelope with
// absolute next/previous links derived from the request URL.
func Paginate[T any](r *http.Request, items []T, page, pageSize int) (Envelope, []T) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	window := items[start:end]

	env := Envelope{Count: total}
	if end < total {
		env.Next = pageLink(r, page+1)
	}
	if page > 1 {
		env.Previous = pageLink(r, page-1)
	}
	return env, window
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
