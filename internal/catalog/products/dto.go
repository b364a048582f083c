package products

import "github.com/tillpoint/tillpoint/internal/money"

// View is the serialised form of a product; money fields are fixed
// 2-decimal strings per the API contract.
type View struct {
	RegNo           int64  `json:"reg_no"`
	Name            string `json:"name"`
	Barcode         string `json:"barcode"`
	Price           string `json:"price"`
	Cost            string `json:"cost"`
	CategoryRegNo   int64  `json:"category_reg_no"`
	TaxRegNo        int64  `json:"tax_reg_no"`
	IsBundle        bool   `json:"is_bundle"`
	IsTransformable bool   `json:"is_transformable"`
	TrackStock      bool   `json:"track_stock"`
	IsVariant       bool   `json:"is_variant"`
	VariantData     []View `json:"variant_data,omitempty"`
}

// ComponentView serialises one bundle composition entry.
type ComponentView struct {
	ProductRegNo int64  `json:"product_reg_no"`
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
}

// TransformEntryView serialises one production-map entry, either forward
// (parent to component) or reverse (component stock back to parent).
type TransformEntryView struct {
	ProductRegNo       int64  `json:"product_reg_no"`
	Name               string `json:"name"`
	Quantity           string `json:"quantity"`
	IsAutoRepackage    bool   `json:"is_auto_repackage"`
	EquivalentQuantity string `json:"equivalent_quantity"`
	IsReverse          bool   `json:"is_reverse"`
}

// TransformMapView is one row of the transform-map index.
type TransformMapView struct {
	RegNo      int64                `json:"reg_no"`
	Name       string               `json:"name"`
	ProductMap []TransformEntryView `json:"product_map"`
}

func newView(p Product) View {
	return View{
		RegNo:           p.RegNo,
		Name:            p.Name,
		Barcode:         p.Barcode,
		Price:           money.Format(p.Price),
		Cost:            money.Format(p.Cost),
		CategoryRegNo:   p.CategoryRegNo,
		TaxRegNo:        p.TaxRegNo,
		IsBundle:        p.IsBundle,
		IsTransformable: p.IsTransformable,
		TrackStock:      p.TrackStock,
	}
}
