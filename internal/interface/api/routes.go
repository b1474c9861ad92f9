package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
)

// Router is the HTTP router of the service
type Router struct {
	handler    *Handler
	middleware *Middleware
	metrics    http.Handler
	timeout    time.Duration
}

// NewRouter creates the router. metrics serves /metrics; runRepo may be nil,
// in which case the run history routes answer 404.
func NewRouter(converter usecase.Converter, runRepo repository.ConversionRunRepository, metrics http.Handler, timeout time.Duration, logger logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(converter, runRepo, logger),
		middleware: NewMiddleware(logger),
		metrics:    metrics,
		timeout:    timeout,
	}
}

// Routes returns the HTTP routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(r.middleware.Logger)
	router.Use(middleware.Recoverer)
	if r.timeout > 0 {
		router.Use(middleware.Timeout(r.timeout))
	}

	router.Get("/health", r.handler.Health)
	if r.metrics != nil {
		router.Handle("/metrics", r.metrics)
	}

	router.Post("/convert", r.handler.Convert)

	router.Route("/runs", func(router chi.Router) {
		router.Get("/", r.handler.ListRuns)
		router.Get("/{id}", r.handler.GetRun)
		router.Get("/{id}/file", r.handler.GetRunFile)
	})

	return router
}
