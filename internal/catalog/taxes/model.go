package taxes

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
)

// Tax is a tenant-scoped tax rate used as a receipt attribute and a report
// grouping key.
type Tax struct {
	ID        int64
	ProfileID int64
	RegNo     int64
	Name      string
	Rate      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON renders the rate with the fixed 2-decimal contract.
func (t Tax) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RegNo int64  `json:"reg_no"`
		Name  string `json:"name"`
		Rate  string `json:"rate"`
	}{RegNo: t.RegNo, Name: t.Name, Rate: money.Format(t.Rate)})
}
