package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/money"
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

// MountRoutes attaches stock-level endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{productRegNo}/{storeRegNo}", h.Save)
	r.Get("/{productRegNo}/{storeRegNo}", h.Show)
	r.Post("/transform", h.Transform)
}

// levelView serialises a stock level; money and quantity fields are
// fixed 2-decimal strings.
type levelView struct {
	ProductRegNo  int64  `json:"product_reg_no"`
	StoreRegNo    int64  `json:"store_reg_no"`
	Units         string `json:"units"`
	MinimumUnits  string `json:"minimum_units"`
	PriceOverride string `json:"price_override"`
	IsSellable    bool   `json:"is_sellable"`
	Status        string `json:"status"`
}

func newLevelView(l StockLevel) levelView {
	return levelView{
		ProductRegNo:  l.ProductRegNo,
		StoreRegNo:    l.StoreRegNo,
		Units:         l.Units.StringFixed(2),
		MinimumUnits:  l.MinimumUnits.StringFixed(2),
		PriceOverride: money.Format(l.PriceOverride),
		IsSellable:    l.IsSellable,
		Status:        l.Status,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())

	var storeRegNo int64
	if raw := r.URL.Query().Get("store_reg_no"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.ValidationError(w, httpx.FieldErrors{"store_reg_no": {"Enter a number."}})
			return
		}
		storeRegNo = parsed
	}
	status := r.URL.Query().Get("status")
	switch status {
	case "", StatusInStock, StatusLowStock, StatusOutOfStock:
	default:
		httpx.ValidationError(w, httpx.FieldErrors{"status": {"Select a valid choice."}})
		return
	}

	levels, err := h.service.List(r.Context(), p.ProfileID, storeRegNo, status)
	if err != nil {
		h.logger.Error("list stock levels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]levelView, 0, len(levels))
	for _, l := range levels {
		views = append(views, newLevelView(l))
	}

	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, views, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	productRegNo, storeRegNo, err := pathRegNos(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	level, err := h.service.Get(r.Context(), p.ProfileID, productRegNo, storeRegNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newLevelView(level))
}

type savePayload struct {
	Units         string `json:"units"`
	MinimumUnits  string `json:"minimum_units"`
	PriceOverride string `json:"price_override"`
	IsSellable    bool   `json:"is_sellable"`
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	productRegNo, storeRegNo, err := pathRegNos(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	var body savePayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}

	fields := httpx.FieldErrors{}
	units, err := decimal.NewFromString(body.Units)
	if err != nil {
		fields.Add("units", "A valid number is required.")
	}
	minimum := decimal.Zero
	if body.MinimumUnits != "" {
		minimum, err = decimal.NewFromString(body.MinimumUnits)
		if err != nil {
			fields.Add("minimum_units", "A valid number is required.")
		}
	}
	override := decimal.Zero
	if body.PriceOverride != "" {
		override, err = decimal.NewFromString(body.PriceOverride)
		if err != nil {
			fields.Add("price_override", "A valid number is required.")
		}
	}
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	saved, err := h.service.Save(r.Context(), StockLevel{
		ProfileID:     p.ProfileID,
		ProductRegNo:  productRegNo,
		StoreRegNo:    storeRegNo,
		Units:         units,
		MinimumUnits:  minimum,
		PriceOverride: override,
		IsSellable:    body.IsSellable,
	})
	if err != nil {
		h.logger.Error("save stock level", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newLevelView(saved))
}

type transformPayload struct {
	ProductRegNo int64  `json:"product_reg_no"`
	StoreRegNo   int64  `json:"store_reg_no"`
	Units        string `json:"units"`
	IsReverse    bool   `json:"is_reverse"`
}

func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body transformPayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	units, err := decimal.NewFromString(body.Units)
	if err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"units": {"A valid number is required."}})
		return
	}

	err = h.service.Transform(r.Context(), p.ProfileID, body.StoreRegNo, body.ProductRegNo, units, body.IsReverse)
	if err != nil {
		h.logger.Error("transform stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Stock transformed."})
}

func pathRegNos(r *http.Request) (int64, int64, error) {
	productRegNo, err := strconv.ParseInt(chi.URLParam(r, "productRegNo"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	storeRegNo, err := strconv.ParseInt(chi.URLParam(r, "storeRegNo"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return productRegNo, storeRegNo, nil
}
