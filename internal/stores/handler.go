package stores

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
	"github.com/tillpoint/tillpoint/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	repo     Repository
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo, validate: validator.New()}
}

// MountRoutes attaches store CRUD and payment-method endpoints.
// Store management is owner-only; the router applies that gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{regNo}", h.Show)
	r.Put("/{regNo}", h.Update)
	r.Delete("/{regNo}", h.Delete)
	r.Get("/payment-methods", h.ListPaymentMethods)
	r.Post("/payment-methods", h.CreatePaymentMethod)
	r.Delete("/payment-methods/{regNo}", h.DeletePaymentMethod)
}

type payload struct {
	Name    string `json:"name" validate:"required,max=100"`
	Address string `json:"address" validate:"omitempty,max=200"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	items, err := h.repo.List(r.Context(), p.ProfileID)
	if err != nil {
		h.logger.Error("list stores", slog.Any("error", err))
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
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	store, err := h.repo.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body payload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	if fields := h.checkPayload(body); len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.repo.Create(r.Context(), Store{ProfileID: p.ProfileID, Name: body.Name, Address: body.Address})
	if err != nil {
		h.logger.Error("create store", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
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
	if fields := h.checkPayload(body); len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	err = h.repo.Update(r.Context(), Store{ProfileID: p.ProfileID, RegNo: regNo, Name: body.Name, Address: body.Address})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Store updated."})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	if err := h.repo.Delete(r.Context(), p.ProfileID, regNo); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type methodPayload struct {
	StoreRegNo  int64  `json:"store_reg_no" validate:"required"`
	Name        string `json:"name" validate:"required,max=100"`
	PaymentType string `json:"payment_type" validate:"omitempty,max=50"`
}

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
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

	methods, err := h.repo.ListPaymentMethods(r.Context(), p.ProfileID, storeRegNo)
	if err != nil {
		h.logger.Error("list payment methods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, methods, page, shared.DefaultPageSize)
	env.Results = window
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body methodPayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	if err := h.validate.Struct(body); err != nil {
		fields := httpx.FieldErrors{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "StoreRegNo":
					fields.Add("store_reg_no", "This field is required.")
				case "Name":
					fields.Add("name", "This field is required.")
				case "PaymentType":
					fields.Add("payment_type", "Ensure this field has no more than 50 characters.")
				}
			}
		}
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.repo.CreatePaymentMethod(r.Context(), PaymentMethod{
		ProfileID:   p.ProfileID,
		StoreRegNo:  body.StoreRegNo,
		Name:        body.Name,
		PaymentType: body.PaymentType,
	})
	if err != nil {
		h.logger.Error("create payment method", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	regNo, err := regNoParam(r)
	if err != nil {
		httpx.NotFound(w)
		return
	}
	if err := h.repo.DeletePaymentMethod(r.Context(), p.ProfileID, regNo); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkPayload(body payload) httpx.FieldErrors {
	fields := httpx.FieldErrors{}
	if err := h.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Name":
					fields.Add("name", "This field is required.")
				case "Address":
					fields.Add("address", "Ensure this field has no more than 200 characters.")
				}
			}
		}
	}
	return fields
}

func regNoParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
}
