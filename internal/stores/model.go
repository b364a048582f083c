package stores

import "time"

// Store is one physical selling location of a profile.
type Store struct {
	ID        int64     `json:"-"`
	ProfileID int64     `json:"-"`
	RegNo     int64     `json:"reg_no"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PaymentMethod is a tender type accepted at one store. Payment methods
// are a report dimension; receipts reference them by reg_no.
type PaymentMethod struct {
	ID          int64  `json:"-"`
	ProfileID   int64  `json:"-"`
	StoreRegNo  int64  `json:"store_reg_no"`
	RegNo       int64  `json:"reg_no"`
	Name        string `json:"name"`
	PaymentType string `json:"payment_type"`
}
