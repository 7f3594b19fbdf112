package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/application/queries"
	querybus "smartfetch/application/queries/bus"
	queries_handlers "smartfetch/application/queries/handlers"
	"smartfetch/application/services"
	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/core/aggregates"
	"smartfetch/domain/events"
	"smartfetch/infrastructure/audit"
	"smartfetch/infrastructure/cache"
	"smartfetch/infrastructure/config"
	"smartfetch/infrastructure/generator"
	"smartfetch/infrastructure/health"
	"smartfetch/infrastructure/llm"
	"smartfetch/infrastructure/llm/ollama"
	"smartfetch/infrastructure/persistence/memory"
	"smartfetch/infrastructure/verify"
	"smartfetch/pkg/extensions"
	"smartfetch/pkg/observability"
	"smartfetch/pkg/ratelimit"
)

// metricsNamespace prefixes every Prometheus metric this service exposes
const metricsNamespace = "smartfetch"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideDomainConfig resolves the business rules, layering the runtime
// overrides from the service configuration on top of the environment
// defaults
func ProvideDomainConfig(cfg *config.Config) domaincfg.DomainConfig {
	domainCfg := *domaincfg.LoadDomainConfig(cfg.Environment)

	if cfg.ResourceCount > 0 {
		domainCfg.DefaultResourceCount = cfg.ResourceCount
	}
	if cfg.DatasetSeed > 0 {
		domainCfg.DatasetSeed = uint64(cfg.DatasetSeed)
	}
	if cfg.NLResultCap > 0 {
		domainCfg.ResultCap = cfg.NLResultCap
	}
	if cfg.AgentTimeoutSec > 0 {
		domainCfg.AgentTimeout = cfg.AgentTimeout()
	}

	return domainCfg
}

// ProvideCatalog generates the synthetic dataset and loads it into the
// read-only catalog aggregate
func ProvideCatalog(domainCfg domaincfg.DomainConfig, logger *zap.Logger) (*aggregates.Catalog, error) {
	gen := generator.NewGenerator(domaincfg.TagVocabulary, logger)

	resources, err := gen.Generate(domainCfg.DefaultResourceCount, domainCfg.DatasetSeed)
	if err != nil {
		return nil, fmt.Errorf("generating dataset: %w", err)
	}

	catalog, err := aggregates.NewCatalog(resources)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	for _, event := range catalog.GetUncommittedEvents() {
		logger.Info("domain event",
			zap.String("type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
		)
	}
	catalog.MarkEventsAsCommitted()

	return catalog, nil
}

// ProvideRepository exposes the catalog through the repository port
func ProvideRepository(catalog *aggregates.Catalog, logger *zap.Logger) ports.ResourceRepository {
	return memory.NewCatalogRepository(catalog, logger)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideHookManager creates the extension hook manager with the metric
// bridges pre-registered: cache traffic, tool invocations, and terminal
// session statuses all feed the collector through hooks rather than direct
// coupling
func ProvideHookManager(metrics *observability.Collector) *extensions.HookManager {
	hooks := extensions.NewHookManager()

	hooks.Register(extensions.HookCacheHit, func(ctx context.Context, data interface{}) error {
		metrics.RecordCacheHit()
		return nil
	})
	hooks.Register(extensions.HookCacheMiss, func(ctx context.Context, data interface{}) error {
		metrics.RecordCacheMiss()
		return nil
	})
	hooks.Register(extensions.HookToolInvoked, func(ctx context.Context, data interface{}) error {
		if event, ok := data.(events.ToolInvoked); ok {
			metrics.RecordToolInvocation(event.Tool)
		}
		return nil
	})
	hooks.Register(extensions.HookSessionCompleted, func(ctx context.Context, data interface{}) error {
		if event, ok := data.(events.SessionCompleted); ok {
			metrics.RecordAgentSession(string(event.Status))
		}
		return nil
	})

	return hooks
}

// ProvideOllamaClient creates the model runtime client
func ProvideOllamaClient(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *ollama.Client {
	return ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel, logger,
		ollama.WithRecorder(metrics),
	)
}

// ProvideSnapshot runs the startup health probe exactly once and fixes the
// outcome for the life of the process. It also seeds the catalog size gauge.
func ProvideSnapshot(
	ctx context.Context,
	client *ollama.Client,
	catalog *aggregates.Catalog,
	metrics *observability.Collector,
	logger *zap.Logger,
) health.Snapshot {
	count := catalog.Count()
	metrics.SetResourcesLoaded(count)

	probe := health.NewProbe(client, client.Model(), logger)
	return probe.Run(ctx, count)
}

// ProvideTagMatcher creates the LLM-first tag matcher with keyword fallback.
// The matcher validates against the full closed vocabulary, not just the
// tags present in the generated dataset.
func ProvideTagMatcher(client *ollama.Client, domainCfg domaincfg.DomainConfig, logger *zap.Logger) ports.TagMatcher {
	return llm.NewMatcher(client, domaincfg.TagVocabulary, domainCfg.AmbiguityMargin, logger)
}

// ProvideAnswerGenerator creates the grounded answer synthesizer
func ProvideAnswerGenerator(client *ollama.Client, logger *zap.Logger) ports.AnswerGenerator {
	return llm.NewAnswerGenerator(client, logger)
}

// ProvideLinkVerifier creates the deterministic deep-link verifier
func ProvideLinkVerifier(repo ports.ResourceRepository, logger *zap.Logger) ports.LinkVerifier {
	return verify.NewVerifier(repo, logger)
}

// ProvideValidationFilter creates the order-preserving citation filter
func ProvideValidationFilter(verifier ports.LinkVerifier, logger *zap.Logger) *services.ResourceValidationFilter {
	return services.NewResourceValidationFilter(verifier, logger)
}

// ProvideAuditLog opens the append-only agent session trail
func ProvideAuditLog(cfg *config.Config, logger *zap.Logger) (ports.AuditLog, error) {
	return audit.NewSessionLog(cfg.AgentLogPath, logger)
}

// ProvideAgentService assembles the single-turn agent pipeline
func ProvideAgentService(
	matcher ports.TagMatcher,
	repo ports.ResourceRepository,
	answerer ports.AnswerGenerator,
	filter *services.ResourceValidationFilter,
	auditLog ports.AuditLog,
	hooks *extensions.HookManager,
	domainCfg domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.AgentService {
	return services.NewAgentService(matcher, repo, answerer, filter, auditLog, hooks, domainCfg, logger)
}

// ProvideCache selects the cache backend from configuration
func ProvideCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.Cache, error) {
	if cfg.CacheProvider == "redis" {
		return cache.Dial(ctx, cfg.RedisAddr, logger)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideRateLimiter creates the per-client limiter guarding LLM routes
func ProvideRateLimiter(cfg *config.Config) *ratelimit.IPRateLimiter {
	return ratelimit.NewIPRateLimiter(cfg.RateLimitPerMinute)
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers. Every
// handler is wrapped in metrics and logging middleware; natural language
// search additionally runs behind the cache.
func ProvideQueryBus(
	repo ports.ResourceRepository,
	matcher ports.TagMatcher,
	verifier ports.LinkVerifier,
	cacheBackend ports.Cache,
	metrics *observability.Collector,
	hooks *extensions.HookManager,
	domainCfg domaincfg.DomainConfig,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	logging := querybus.NewLoggingMiddleware(logger, hooks)
	metricsMw := querybus.NewMetricsMiddleware(metrics)
	caching := querybus.NewCachingMiddleware(cacheBackend, cfg.CacheTTLSeconds, hooks)

	instrument := func(handler querybus.QueryHandler) querybus.QueryHandler {
		return logging.Wrap(metricsMw.Wrap(handler))
	}

	// Register GetResourceQuery handler
	getResourceHandler := queries_handlers.NewGetResourceHandler(repo, logger)
	if err := queryBus.Register(queries.GetResourceQuery{}, instrument(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetResourceQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getResourceHandler.Handle(ctx, getQuery)
		},
	})); err != nil {
		return nil, err
	}

	// Register ListResourcesQuery handler
	listResourcesHandler := queries_handlers.NewListResourcesHandler(repo, logger)
	if err := queryBus.Register(queries.ListResourcesQuery{}, instrument(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListResourcesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listResourcesHandler.Handle(ctx, listQuery)
		},
	})); err != nil {
		return nil, err
	}

	// Register SearchByTagQuery handler
	searchByTagHandler := queries_handlers.NewSearchByTagHandler(repo, logger)
	if err := queryBus.Register(queries.SearchByTagQuery{}, instrument(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			searchQuery, ok := query.(queries.SearchByTagQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return searchByTagHandler.Handle(ctx, searchQuery)
		},
	})); err != nil {
		return nil, err
	}

	// Register NLSearchQuery handler, cached by normalized query text
	nlSearchHandler := queries_handlers.NewNLSearchHandler(matcher, repo, verifier, domainCfg, logger)
	if err := queryBus.Register(queries.NLSearchQuery{}, instrument(caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			nlQuery, ok := query.(queries.NLSearchQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return nlSearchHandler.Handle(ctx, nlQuery)
		},
	}))); err != nil {
		return nil, err
	}

	return queryBus, nil
}
