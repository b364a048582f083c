package discounts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
)

// Discount is a tenant-scoped flat discount applied to receipts and used
// as a report grouping key.
type Discount struct {
	ID        int64
	ProfileID int64
	RegNo     int64
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RegNo  int64  `json:"reg_no"`
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}{RegNo: d.RegNo, Name: d.Name, Amount: money.Format(d.Amount)})
}
