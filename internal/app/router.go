package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tillpoint/tillpoint/internal/auth"
	"github.com/tillpoint/tillpoint/internal/catalog/categories"
	"github.com/tillpoint/tillpoint/internal/catalog/discounts"
	"github.com/tillpoint/tillpoint/internal/catalog/modifiers"
	"github.com/tillpoint/tillpoint/internal/catalog/products"
	"github.com/tillpoint/tillpoint/internal/catalog/taxes"
	"github.com/tillpoint/tillpoint/internal/inventory"
	"github.com/tillpoint/tillpoint/internal/observability"
	reporthttp "github.com/tillpoint/tillpoint/internal/reports/http"
	"github.com/tillpoint/tillpoint/internal/sales"
	"github.com/tillpoint/tillpoint/internal/stores"
	"github.com/tillpoint/tillpoint/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	Verifier    TokenVerifier
	Maintenance MaintenanceSource

	AuthHandler       *auth.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	TaxesHandler      *taxes.Handler
	DiscountsHandler  *discounts.Handler
	ModifiersHandler  *modifiers.Handler
	StoresHandler     *stores.Handler
	InventoryHandler  *inventory.Handler
	SalesHandler      *sales.Handler
	ReportsHandler    *reporthttp.Handler
	JobsHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Tillpoint defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Verifier:    params.Verifier,
		Maintenance: params.Maintenance,
		Metrics:     params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequirePrincipal)

		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/taxes", params.TaxesHandler.MountRoutes)
		r.Route("/discounts", params.DiscountsHandler.MountRoutes)
		r.Route("/modifiers", params.ModifiersHandler.MountRoutes)
		r.Route("/stores", params.StoresHandler.MountRoutes)
		r.Route("/stock-levels", params.InventoryHandler.MountRoutes)
		r.Route("/receipts", params.SalesHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
