package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	querybus "smartfetch/application/queries/bus"
	"smartfetch/application/services"
	domaincfg "smartfetch/domain/config"
	"smartfetch/infrastructure/config"
	"smartfetch/infrastructure/health"
	"smartfetch/interfaces/http/rest/handlers"
	"smartfetch/interfaces/http/rest/middleware"
	"smartfetch/pkg/observability"
	"smartfetch/pkg/ratelimit"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	domainCfg    domaincfg.DomainConfig
	queryBus     *querybus.QueryBus
	agentService *services.AgentService
	snapshot     health.Snapshot
	metrics      *observability.Collector
	limiter      *ratelimit.IPRateLimiter
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	domainCfg domaincfg.DomainConfig,
	queryBus *querybus.QueryBus,
	agentService *services.AgentService,
	snapshot health.Snapshot,
	metrics *observability.Collector,
	limiter *ratelimit.IPRateLimiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:          cfg,
		domainCfg:    domainCfg,
		queryBus:     queryBus,
		agentService: agentService,
		snapshot:     snapshot,
		metrics:      metrics,
		limiter:      limiter,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.AllowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health checks
	healthHandler := handlers.NewHealthHandler(rt.snapshot, rt.logger)
	router.Get("/health", healthHandler.Health)
	router.Get("/ready", healthHandler.Ready)

	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	// Catalog endpoints
	resourceHandler := handlers.NewResourceHandler(rt.queryBus, rt.logger)
	router.Route("/resources", func(r chi.Router) {
		r.Get("/", resourceHandler.ListResources)
		r.Get("/{id}", resourceHandler.GetResource)
	})

	// Exact tag search
	router.Get("/search", handlers.NewSearchHandler(rt.queryBus, rt.domainCfg, rt.logger).Search)

	// LLM-backed endpoints share a rate limit and a circuit breaker so a
	// struggling model runtime cannot starve the catalog endpoints.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.logger))
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("llm"), rt.logger))

		r.Get("/nl/search", handlers.NewNLSearchHandler(rt.queryBus, rt.snapshot, rt.domainCfg, rt.logger).Search)
		r.Post("/experimental/agent", handlers.NewAgentHandler(rt.agentService, rt.snapshot, rt.domainCfg, rt.logger).Ask)
	})

	return router
}
