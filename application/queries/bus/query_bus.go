// Package bus implements the validate-then-dispatch query bus and the
// middleware chain (logging, caching, metrics) wrapped around its handlers.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartfetch/pkg/extensions"
)

// Query is a read-only request. Validate runs before dispatch, so handlers
// never see a malformed query.
type Query interface {
	Validate() error
}

// QueryHandler executes one query type.
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc adapts a function to the QueryHandler interface.
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle calls f.
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// CacheKeyer is implemented by queries that want a stable, normalized cache
// key instead of the default fingerprint.
type CacheKeyer interface {
	CacheKey() string
}

// Cache is the slice of the cache backend the middleware needs.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// Recorder receives per-query outcome metrics.
type Recorder interface {
	RecordQuery(name string, err error, duration time.Duration)
}

// QueryBus routes each query to the handler registered for its concrete
// type.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]QueryHandler
}

// NewQueryBus creates an empty bus.
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[reflect.Type]QueryHandler)}
}

// Register binds a handler to the concrete type of queryType. Registering
// the same type twice is a wiring bug and fails.
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, taken := b.handlers[t]; taken {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates the query and dispatches it to its handler.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, found := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("no handler registered for query type %T", query)
	}

	return handler.Handle(ctx, query)
}

// queryName returns the concrete type name of a query for labels and logs.
func queryName(query Query) string {
	t := reflect.TypeOf(query)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// fireHooks runs the observers at point; a nil manager is allowed so tests
// can wire middlewares without one.
func fireHooks(ctx context.Context, hooks *extensions.HookManager, point extensions.HookPoint, data interface{}) {
	if hooks == nil {
		return
	}
	_ = hooks.Execute(ctx, point, data)
}

// CachingMiddleware serves repeated queries from the cache. Only successful
// results are stored; a cached value is returned exactly as the backend
// holds it, which for the Redis backend is the raw stored JSON.
type CachingMiddleware struct {
	cache Cache
	ttl   int // seconds
	hooks *extensions.HookManager
}

// NewCachingMiddleware creates a caching middleware; hooks may be nil.
func NewCachingMiddleware(cache Cache, ttl int, hooks *extensions.HookManager) *CachingMiddleware {
	return &CachingMiddleware{cache: cache, ttl: ttl, hooks: hooks}
}

// Wrap adds cache lookup and fill around next.
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key := m.cacheKey(query)

		if hit, found := m.cache.Get(ctx, key); found {
			fireHooks(ctx, m.hooks, extensions.HookCacheHit, key)
			return hit, nil
		}
		fireHooks(ctx, m.hooks, extensions.HookCacheMiss, key)

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}
		_ = m.cache.Set(ctx, key, result, m.ttl)
		return result, nil
	})
}

func (m *CachingMiddleware) cacheKey(query Query) string {
	if keyer, ok := query.(CacheKeyer); ok {
		return keyer.CacheKey()
	}
	return fmt.Sprintf("%T:%+v", query, query)
}

// MetricsMiddleware records one observation per query, success or not.
type MetricsMiddleware struct {
	metrics Recorder
}

// NewMetricsMiddleware creates a metrics middleware.
func NewMetricsMiddleware(metrics Recorder) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap adds outcome recording around next.
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)
		m.metrics.RecordQuery(queryName(query), err, time.Since(start))
		return result, err
	})
}

// LoggingMiddleware logs query outcomes and fires the query lifecycle hooks.
type LoggingMiddleware struct {
	logger *zap.Logger
	hooks  *extensions.HookManager
}

// NewLoggingMiddleware creates a logging middleware; hooks may be nil.
func NewLoggingMiddleware(logger *zap.Logger, hooks *extensions.HookManager) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger, hooks: hooks}
}

// Wrap adds logging and lifecycle hooks around next.
func (m *LoggingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		name := queryName(query)
		start := time.Now()

		fireHooks(ctx, m.hooks, extensions.HookBeforeQueryExecute, name)

		result, err := next.Handle(ctx, query)
		duration := time.Since(start)

		if err != nil {
			m.logger.Error("query failed",
				zap.String("query", name),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			fireHooks(ctx, m.hooks, extensions.HookQueryFailed, name)
			return nil, err
		}

		m.logger.Debug("query executed",
			zap.String("query", name),
			zap.Duration("duration", duration),
		)
		fireHooks(ctx, m.hooks, extensions.HookAfterQueryExecute, name)
		return result, nil
	})
}
