// Package api provides the HTTP API for the train reroute service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/api/handler"
	"github.com/trainreroute/trainreroute/internal/api/middleware"
	"github.com/trainreroute/trainreroute/internal/api/response"
	"github.com/trainreroute/trainreroute/internal/resilience"
	"github.com/trainreroute/trainreroute/internal/train"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	RerouteService  handler.RerouteComputer
	TrainRepository train.Repository
	Registry        *resilience.Registry

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "trainreroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})

	var store handler.Pinger
	if cfg.TrainRepository != nil {
		store = cfg.TrainRepository
	}
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Store:     store,
		Registry:  cfg.Registry,
	})

	rerouteRateLimit := middleware.RateLimitByIP(middleware.RerouteRateLimit)   // 60 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 120 req/min

	var rerouteHandler *handler.RerouteHandler
	if cfg.RerouteService != nil {
		rerouteHandler = handler.NewRerouteHandler(cfg.RerouteService, cfg.Logger)

		// Unversioned path kept for existing clients.
		r.With(rerouteRateLimit).Get("/trains/{trainId}/reroutes", rerouteHandler.GetReroutes)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/trains/{trainId}", func(r chi.Router) {
			if cfg.TrainRepository != nil {
				trainHandler := handler.NewTrainHandler(cfg.TrainRepository)
				r.With(standardRateLimit).Get("/", trainHandler.GetTrain)
			}
			if rerouteHandler != nil {
				r.With(rerouteRateLimit).Get("/reroutes", rerouteHandler.GetReroutes)
			}
		})
	})

	return r
}
