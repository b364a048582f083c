package categories

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
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches category CRUD under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{regNo}", h.Show)
	r.Put("/{regNo}", h.Update)
	r.Delete("/{regNo}", h.Delete)
}

type payload struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color_code" validate:"omitempty,max=30"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), p.ProfileID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
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
	category, err := h.service.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
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

	created, err := h.service.Create(r.Context(), Category{ProfileID: p.ProfileID, Name: body.Name, Color: body.Color})
	if err != nil {
		h.logger.Error("create category", slog.Any("error", err))
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

	err = h.service.Update(r.Context(), Category{ProfileID: p.ProfileID, RegNo: regNo, Name: body.Name, Color: body.Color})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Detail{Detail: "Category updated."})
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

func (h *Handler) checkPayload(body payload) httpx.FieldErrors {
	fields := httpx.FieldErrors{}
	if err := h.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Name":
					fields.Add("name", "This field is required.")
				case "Color":
					fields.Add("color_code", "Ensure this field has no more than 30 characters.")
				}
			}
		}
	}
	return fields
}

func regNoParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "regNo"), 10, 64)
}
