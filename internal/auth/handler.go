package auth

import (
	"errors"
	"log/slog"
	"net/http"

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

// MountRoutes attaches the login endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginPayload
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
				case "Email":
					fields.Add("email", "Enter a valid email address.")
				case "Password":
					fields.Add("password", "This field is required.")
				}
			}
		}
		httpx.ValidationError(w, fields)
		return
	}

	token, acct, err := h.service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Unauthorized(w, "Unable to log in with provided credentials.")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, Name: acct.Name, Role: acct.Role})
}
