package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/reports"
	"github.com/tillpoint/tillpoint/internal/scope"
	"github.com/tillpoint/tillpoint/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *reports.Service
}

func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the report endpoints. The summary and its CSV
// export are gated to owners and managers before scope resolution.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(requireManager)
		r.Get("/summary", h.Summary)
		r.Get("/summary/export", h.SummaryCSV)
	})
	r.Get("/users", h.Users)
	r.Get("/categories", h.Categories)
	r.Get("/discounts", h.Discounts)
	r.Get("/taxes", h.Taxes)
	r.Get("/products", h.Products)
	r.Get("/modifiers", h.Modifiers)
	r.Get("/payments", h.Payments)
}

// requireManager rejects cashier principals before any data access.
func requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		if p == nil || (!p.IsOwner && p.Role != shared.RoleManager) {
			httpx.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	payload, err := h.service.Summary(r.Context(), p, q)
	if err != nil {
		h.logger.Error("summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// dimensionEnvelope is the paginated report shape with the selectable
// dimension context lists alongside.
type dimensionEnvelope struct {
	shared.Envelope
	Users  []scope.UserRef  `json:"users"`
	Stores []scope.StoreRef `json:"stores"`
}

func respondRows[T any](w http.ResponseWriter, r *http.Request, rows []T, sc scope.AccessScope) {
	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, rows, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, dimensionEnvelope{Envelope: env, Users: sc.Users, Stores: sc.Stores})
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.UserReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("user report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.CategoryReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("category report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Discounts(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.DiscountReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("discount report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Taxes(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.TaxReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("tax report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.ProductReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("product report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Modifiers(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.ModifierReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("modifier report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	q, fields := parseQuery(r)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}
	rows, sc, err := h.service.PaymentReport(r.Context(), p, q)
	if err != nil {
		h.logger.Error("payment report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondRows(w, r, rows, sc)
}
