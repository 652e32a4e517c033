package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	AllowedOrigins []string
	// Events serves the SSE stream; /events is not mounted when nil
	Events http.Handler
	Logger *zap.Logger
}

// NewRouter mounts the editor API, the validator endpoints, the event
// stream and the metrics endpoint.
func NewRouter(h *GraphHandler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(logger.Named("http")))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Validator
	router.Get("/", h.Ping)
	router.Route("/pipelines", func(r chi.Router) {
		r.Post("/parse", h.ParsePipeline)
		r.Get("/analyses", h.ListAnalyses)
	})

	// Editor
	router.Route("/api", func(r chi.Router) {
		r.Get("/graph", h.GetGraph)
		r.Get("/kinds", h.ListKinds)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", h.CreateNode)
			r.Post("/changes", h.ApplyNodeChanges)
			r.Put("/{id}/data/{field}", h.UpdateField)
		})
		r.Post("/edges/changes", h.ApplyEdgeChanges)
		r.Post("/connections", h.Connect)
		r.Post("/selection/delete", h.DeleteSelected)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.GetHistory)
			r.Post("/undo", h.Undo)
			r.Post("/redo", h.Redo)
		})

		r.Post("/shortcut", h.Shortcut)
		r.Post("/submit", h.Submit)
		r.Get("/export/{format}", h.Export)
		r.Post("/import/{format}", h.Import)
	})

	if opts.Events != nil {
		router.Method(http.MethodGet, "/events", opts.Events)
	}
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}
