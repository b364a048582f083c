package modifiers

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

type optionPayload struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type payload struct {
	Name    string          `json:"name"`
	Options []optionPayload `json:"options"`
}

func (p payload) parse() (Modifier, httpx.FieldErrors) {
	fields := httpx.FieldErrors{}
	if p.Name == "" {
		fields.Add("name", "This field is required.")
	}
	m := Modifier{Name: p.Name}
	for _, opt := range p.Options {
		price, err := decimal.NewFromString(opt.Price)
		if err != nil {
			fields.Add("options", "A valid number is required.")
			continue
		}
		m.Options = append(m.Options, Option{Name: opt.Name, Price: price})
	}
	if len(fields) > 0 {
		return Modifier{}, fields
	}
	return m, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), p.ProfileID)
	if err != nil {
		h.logger.Error("list modifiers", slog.Any("error", err))
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
	modifier, err := h.service.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, modifier)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	modifier, fields := body.parse()
	if fields != nil {
		httpx.ValidationError(w, fields)
		return
	}
	modifier.ProfileID = p.ProfileID

	created, err := h.service.Create(r.Context(), modifier)
	if err != nil {
		h.logger.Error("create modifier", slog.Any("error", err))
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
	modifier, fields := body.parse()
	if fields != nil {
		httpx.ValidationError(w, fields)
		return
	}
	modifier.ProfileID = p.ProfileID
	modifier.RegNo = regNo

	if err := h.service.Update(r.Context(), modifier); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Modifier updated."})
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
