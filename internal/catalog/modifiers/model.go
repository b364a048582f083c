package modifiers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
)

// Modifier is a named set of options a cashier can attach to a receipt
// line (e.g. "Size" with Small/Large).
type Modifier struct {
	ID        int64
	ProfileID int64
	RegNo     int64
	Name      string
	Options   []Option
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Option is one selectable choice with its price adjustment.
type Option struct {
	ID    int64
	RegNo int64
	Name  string
	Price decimal.Decimal
}

func (m Modifier) MarshalJSON() ([]byte, error) {
	opts := make([]map[string]any, 0, len(m.Options))
	for _, o := range m.Options {
		opts = append(opts, map[string]any{
			"reg_no": o.RegNo,
			"name":   o.Name,
			"price":  money.Format(o.Price),
		})
	}
	return json.Marshal(struct {
		RegNo   int64            `json:"reg_no"`
		Name    string           `json:"name"`
		Options []map[string]any `json:"options"`
	}{RegNo: m.RegNo, Name: m.Name, Options: opts})
}
