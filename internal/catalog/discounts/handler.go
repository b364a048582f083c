package discounts

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

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{regNo}", h.Show)
	r.Put("/{regNo}", h.Update)
	r.Delete("/{regNo}", h.Delete)
}

type payload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

func (p payload) parse() (string, decimal.Decimal, httpx.FieldErrors) {
	fields := httpx.FieldErrors{}
	if p.Name == "" {
		fields.Add("name", "This field is required.")
	}
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		fields.Add("amount", "A valid number is required.")
	}
	if len(fields) > 0 {
		return "", decimal.Zero, fields
	}
	return p.Name, amount, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), p.ProfileID)
	if err != nil {
		h.logger.Error("list discounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, items, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	discount, err := h.service.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, discount)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	name, amount, fields := body.parse()
	if fields != nil {
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.service.Create(r.Context(), Discount{ProfileID: p.ProfileID, Name: name, Amount: amount})
	if err != nil {
		h.logger.Error("create discount", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	name, amount, fields := body.parse()
	if fields != nil {
		httpx.ValidationError(w, fields)
		return
	}

	if err := h.service.Update(r.Context(), Discount{ProfileID: p.ProfileID, RegNo: regNo, Name: name, Amount: amount}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Discount updated."})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
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
