package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Language model metrics
	LLMRequests *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	// Query bus metrics
	QueryExecutions *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec

	// Agent metrics
	AgentSessions   *prometheus.CounterVec
	ToolInvocations *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Catalog metrics
	ResourcesLoaded prometheus.Gauge
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Use singleton pattern to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	// Return existing collector if already created
	if globalCollector != nil {
		return globalCollector
	}

	// Create a new registry for this collector
	registry := prometheus.NewRegistry()

	// Create metrics (not auto-registered)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	llmRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"operation", "status"},
	)

	llmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	queryExecutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_executions_total",
			Help:      "Total number of query bus executions",
		},
		[]string{"query", "status"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query bus execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	agentSessions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_sessions_total",
			Help:      "Total number of agent sessions by terminal status",
		},
		[]string{"status"},
	)

	toolInvocations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_tool_invocations_total",
			Help:      "Total number of agent tool invocations",
		},
		[]string{"tool"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
	)

	resourcesLoaded := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resources_loaded",
			Help:      "Number of resources held in the in-memory catalog",
		},
	)

	// Register all metrics with the registry
	registry.MustRegister(
		httpRequests,
		httpDuration,
		llmRequests,
		llmDuration,
		queryExecutions,
		queryDuration,
		agentSessions,
		toolInvocations,
		cacheHits,
		cacheMisses,
		resourcesLoaded,
	)

	// Create and store the collector
	globalCollector = &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		LLMRequests:     llmRequests,
		LLMDuration:     llmDuration,
		QueryExecutions: queryExecutions,
		QueryDuration:   queryDuration,
		AgentSessions:   agentSessions,
		ToolInvocations: toolInvocations,
		CacheHits:       cacheHits,
		CacheMisses:     cacheMisses,
		ResourcesLoaded: resourcesLoaded,
	}

	return globalCollector
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// RecordHTTPRequest records a completed HTTP request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLLMRequest records a language model call
func (c *Collector) RecordLLMRequest(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.LLMRequests.WithLabelValues(operation, status).Inc()
	c.LLMDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordQuery records a query bus execution
func (c *Collector) RecordQuery(name string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.QueryExecutions.WithLabelValues(name, status).Inc()
	c.QueryDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordAgentSession records a terminal agent session status
func (c *Collector) RecordAgentSession(status string) {
	c.AgentSessions.WithLabelValues(status).Inc()
}

// RecordToolInvocation records an agent tool call
func (c *Collector) RecordToolInvocation(tool string) {
	c.ToolInvocations.WithLabelValues(tool).Inc()
}

// RecordCacheHit records a cache hit
func (c *Collector) RecordCacheHit() {
	c.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (c *Collector) RecordCacheMiss() {
	c.CacheMisses.Inc()
}

// SetResourcesLoaded sets the catalog size gauge
func (c *Collector) SetResourcesLoaded(n int) {
	c.ResourcesLoaded.Set(float64(n))
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
