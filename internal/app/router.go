package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/supplier-service/internal/observability"
	"github.com/odyssey-erp/supplier-service/internal/platform/httpx"
	"github.com/odyssey-erp/supplier-service/internal/suppliers"
	"github.com/odyssey-erp/supplier-service/jobs"
)

const welcomeMessage = "Welcome to Supplier Service"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SupplierHandler *suppliers.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
	// DisableRequestLog turns off chi's request logger, used by tests.
	DisableRequestLog bool
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.DisableRequestLog {
		r.Use(chimw.Logger)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, welcomeMessage)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.SupplierHandler != nil {
		r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		r.Route("/api/suppliers", params.SupplierHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "NotFound", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "MethodNotAllowed", http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
