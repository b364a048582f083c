package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches product CRUD, bundle composition and
// transform-map endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/transform-maps", h.TransformIndex)
	r.Get("/{regNo}", h.Show)
	r.Put("/{regNo}", h.Update)
	r.Delete("/{regNo}", h.Delete)
	r.Get("/{regNo}/components", h.Components)
	r.Put("/{regNo}/components", h.ReplaceComponents)
	r.Get("/{regNo}/transform-map", h.TransformMap)
	r.Put("/{regNo}/transform-map", h.ReplaceTransformMap)
}

type payload struct {
	Name            string `json:"name"`
	Barcode         string `json:"barcode"`
	Price           string `json:"price"`
	Cost            string `json:"cost"`
	CategoryRegNo   int64  `json:"category_reg_no"`
	TaxRegNo        int64  `json:"tax_reg_no"`
	IsBundle        bool   `json:"is_bundle"`
	IsTransformable bool   `json:"is_transformable"`
	IsVariantChild  bool   `json:"is_variant"`
	TrackStock      bool   `json:"track_stock"`
	ParentRegNo     int64  `json:"parent_reg_no"`
}

func (p payload) parse(profileID int64) (Product, httpx.FieldErrors) {
	fields := httpx.FieldErrors{}
	if p.Name == "" {
		fields.Add("name", "This field is required.")
	}
	if len(p.Name) > 100 {
		fields.Add("name", "Ensure this field has no more than 100 characters.")
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		fields.Add("price", "A valid number is required.")
	}
	cost := decimal.Zero
	if p.Cost != "" {
		cost, err = decimal.NewFromString(p.Cost)
		if err != nil {
			fields.Add("cost", "A valid number is required.")
		}
	}
	if len(fields) > 0 {
		return Product{}, fields
	}
	return Product{
		ProfileID:       profileID,
		Name:            p.Name,
		Barcode:         p.Barcode,
		Price:           price,
		Cost:            cost,
		CategoryRegNo:   p.CategoryRegNo,
		TaxRegNo:        p.TaxRegNo,
		IsBundle:        p.IsBundle,
		IsTransformable: p.IsTransformable,
		IsVariantChild:  p.IsVariantChild,
		TrackStock:      p.TrackStock,
		ParentRegNo:     p.ParentRegNo,
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())

	filters := ListFilters{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("category_reg_no"); raw != "" {
		regNo, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.ValidationError(w, httpx.FieldErrors{"category_reg_no": {"Enter a number."}})
			return
		}
		filters.CategoryRegNo = &regNo
	}

	views, err := h.service.List(r.Context(), p.ProfileID, filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, views, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	view, err := h.service.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	product, fields := body.parse(p.ProfileID)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newView(created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	product, fields := body.parse(p.ProfileID)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	product.RegNo = regNo

	if err := h.service.Update(r.Context(), product); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Product updated."})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	if err := h.service.Delete(r.Context(), p.ProfileID, regNo); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Components(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	components, err := h.service.Components(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]ComponentView, 0, len(components))
	for _, c := range components {
		views = append(views, ComponentView{
			ProductRegNo: c.ComponentRegNo,
			Name:         c.ComponentName,
			Quantity:     c.Quantity.StringFixed(2),
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}

type componentPayload struct {
	ProductRegNo int64  `json:"product_reg_no"`
	Quantity     string `json:"quantity"`
}

func (h *Handler) ReplaceComponents(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	var body []componentPayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	components := make([]BundleComponent, 0, len(body))
	for _, c := range body {
		qty, err := decimal.NewFromString(c.Quantity)
		if err != nil {
			httpx.ValidationError(w, httpx.FieldErrors{"quantity": {"A valid number is required."}})
			return
		}
		components = append(components, BundleComponent{ComponentRegNo: c.ProductRegNo, Quantity: qty})
	}
	if err := h.service.ReplaceComponents(r.Context(), p.ProfileID, regNo, components); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Bundle components updated."})
}

func (h *Handler) TransformMap(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	entries, err := h.service.TransformMap(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]TransformEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, TransformEntryView{
			ProductRegNo:       e.ComponentRegNo,
			Name:               e.ComponentName,
			Quantity:           e.Quantity.StringFixed(2),
			IsAutoRepackage:    e.IsAutoRepackage,
			EquivalentQuantity: e.Quantity.StringFixed(2),
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}

type transformPayload struct {
	ProductRegNo    int64  `json:"product_reg_no"`
	Quantity        string `json:"quantity"`
	IsAutoRepackage bool   `json:"is_auto_repackage"`
}

func (h *Handler) ReplaceTransformMap(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	var body []transformPayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	entries := make([]TransformMapEntry, 0, len(body))
	for _, e := range body {
		qty, err := decimal.NewFromString(e.Quantity)
		if err != nil {
			httpx.ValidationError(w, httpx.FieldErrors{"quantity": {"A valid number is required."}})
			return
		}
		entries = append(entries, TransformMapEntry{
			ComponentRegNo:  e.ProductRegNo,
			Quantity:        qty,
			IsAutoRepackage: e.IsAutoRepackage,
		})
	}
	if err := h.service.ReplaceTransformMap(r.Context(), p.ProfileID, regNo, entries); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Transform map updated."})
}

func (h *Handler) TransformIndex(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	rows, err := h.service.TransformIndex(r.Context(), p.ProfileID)
	if err != nil {
		h.logger.Error("transform index", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, rows, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, env)
}

func regNoParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
}
