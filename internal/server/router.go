package server

import (
	"net/http"

	"github.com/cloo-solutions/justicesearch/internal/api"
	"github.com/cloo-solutions/justicesearch/internal/api/handlers"
	"github.com/cloo-solutions/justicesearch/internal/api/middleware"
	"github.com/cloo-solutions/justicesearch/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger        *zap.Logger
	SearchHandler *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.Tracing)
	r.Use(metrics.Middleware())
	r.Use(middleware.AccessLog)
	r.Use(middleware.RequestLimits(middleware.Limits{MaxQueryBytes: 4 << 10, MaxBodyBytes: 1 << 20}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/providers", cfg.SearchHandler.Providers)

	r.Route("/search", func(r chi.Router) {
		r.Get("/", cfg.SearchHandler.Search)
		r.Get("/quick", cfg.SearchHandler.Quick)
	})

	r.Get("/organizations/{"+middleware.OrganizationParam+"}/search", cfg.SearchHandler.ScopedSearch)

	return r
}
