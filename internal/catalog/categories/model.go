package categories

import "time"

// Category is a tenant-scoped grouping dimension for products and reports.
type Category struct {
	ID        int64     `json:"-"`
	ProfileID int64     `json:"-"`
	RegNo     int64     `json:"reg_no"`
	Name      string    `json:"name"`
	Color     string    `json:"color_code"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
