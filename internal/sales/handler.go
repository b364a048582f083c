package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

// MountRoutes attaches receipt endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.CreateSale)
	r.Post("/refund", h.CreateRefund)
	r.Get("/{regNo}", h.Show)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())

	var filters ListFilters
	fields := httpx.FieldErrors{}
	if raw := r.URL.Query().Get("date_after"); raw != "" {
		after, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fields.Add("date", "Enter a valid date.")
		} else {
			filters.After = after
		}
	}
	if raw := r.URL.Query().Get("date_before"); raw != "" {
		before, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fields.Add("date", "Enter a valid date.")
		} else {
			filters.Before = before.AddDate(0, 0, 1)
		}
	}
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	receipts, err := h.service.List(r.Context(), p.ProfileID, filters)
	if err != nil {
		h.logger.Error("list receipts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]ReceiptView, 0, len(receipts))
	for _, receipt := range receipts {
		views = append(views, newReceiptView(receipt))
	}

	page := shared.PageFromRequest(r)
	env, window := shared.Paginate(r, views, page, shared.DefaultPageSize)
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
	receipt, err := h.service.Get(r.Context(), p.ProfileID, regNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newReceiptView(receipt))
}

type modifierPayload struct {
	ModifierRegNo int64  `json:"modifier_reg_no"`
	ModifierName  string `json:"modifier_name"`
	OptionName    string `json:"option_name"`
	Amount        string `json:"amount"`
}

type linePayload struct {
	ProductRegNo int64             `json:"product_reg_no"`
	Units        string            `json:"units"`
	Price        string            `json:"price"`
	Modifiers    []modifierPayload `json:"modifiers"`
}

type paymentPayload struct {
	MethodRegNo int64  `json:"payment_method_reg_no"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
}

type salePayload struct {
	StoreRegNo     int64            `json:"store_reg_no"`
	DiscountRegNo  int64            `json:"discount_reg_no"`
	TaxRegNo       int64            `json:"tax_reg_no"`
	DiscountAmount string           `json:"discount_amount"`
	TaxAmount      string           `json:"tax_amount"`
	Timestamp      time.Time        `json:"timestamp"`
	Lines          []linePayload    `json:"receipt_lines"`
	Payments       []paymentPayload `json:"payments"`
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body salePayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	if body.StoreRegNo == 0 {
		httpx.ValidationError(w, httpx.FieldErrors{"store_reg_no": {"This field is required."}})
		return
	}

	input := SaleInput{
		StoreRegNo:    body.StoreRegNo,
		UserRegNo:     p.UserRegNo,
		DiscountRegNo: body.DiscountRegNo,
		TaxRegNo:      body.TaxRegNo,
		Timestamp:     body.Timestamp,
	}
	fields := httpx.FieldErrors{}
	var err error
	input.DiscountAmount, err = optionalAmount(body.DiscountAmount)
	if err != nil {
		fields.Add("discount_amount", "A valid number is required.")
	}
	input.TaxAmount, err = optionalAmount(body.TaxAmount)
	if err != nil {
		fields.Add("tax_amount", "A valid number is required.")
	}
	input.Lines, input.Payments, fields = parseLines(body.Lines, body.Payments, fields)
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.service.CreateSale(r.Context(), p.ProfileID, input)
	if err != nil {
		h.logger.Error("create receipt", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newReceiptView(created))
}

type refundPayload struct {
	OriginalRegNo int64            `json:"original_reg_no"`
	Timestamp     time.Time        `json:"timestamp"`
	Lines         []linePayload    `json:"receipt_lines"`
	Payments      []paymentPayload `json:"payments"`
}

func (h *Handler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var body refundPayload
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.ValidationError(w, httpx.FieldErrors{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	if body.OriginalRegNo == 0 {
		httpx.ValidationError(w, httpx.FieldErrors{"original_reg_no": {"This field is required."}})
		return
	}

	input := RefundInput{
		OriginalRegNo: body.OriginalRegNo,
		UserRegNo:     p.UserRegNo,
		Timestamp:     body.Timestamp,
	}
	var fields httpx.FieldErrors
	input.Lines, input.Payments, fields = parseLines(body.Lines, body.Payments, httpx.FieldErrors{})
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return
	}

	created, err := h.service.CreateRefund(r.Context(), p.ProfileID, input)
	if err != nil {
		h.logger.Error("create refund", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newReceiptView(created))
}

func parseLines(lines []linePayload, payments []paymentPayload, fields httpx.FieldErrors) ([]LineInput, []PaymentInput, httpx.FieldErrors) {
	lineInputs := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		units, err := decimal.NewFromString(l.Units)
		if err != nil {
			fields.Add("units", "A valid number is required.")
			continue
		}
		price, err := optionalAmount(l.Price)
		if err != nil {
			fields.Add("price", "A valid number is required.")
			continue
		}
		input := LineInput{ProductRegNo: l.ProductRegNo, Units: units, Price: price}
		for _, m := range l.Modifiers {
			amount, err := optionalAmount(m.Amount)
			if err != nil {
				fields.Add("amount", "A valid number is required.")
				continue
			}
			input.Modifiers = append(input.Modifiers, ModifierInput{
				ModifierRegNo: m.ModifierRegNo,
				ModifierName:  m.ModifierName,
				OptionName:    m.OptionName,
				Amount:        amount,
			})
		}
		lineInputs = append(lineInputs, input)
	}

	paymentInputs := make([]PaymentInput, 0, len(payments))
	for _, p := range payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			fields.Add("amount", "A valid number is required.")
			continue
		}
		paymentInputs = append(paymentInputs, PaymentInput{MethodRegNo: p.MethodRegNo, MethodName: p.Name, Amount: amount})
	}
	return lineInputs, paymentInputs, fields
}

func optionalAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
