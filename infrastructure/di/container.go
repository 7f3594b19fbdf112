package di

import (
	"io"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	querybus "smartfetch/application/queries/bus"
	"smartfetch/application/services"
	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/core/aggregates"
	"smartfetch/infrastructure/config"
	"smartfetch/infrastructure/health"
	"smartfetch/pkg/extensions"
	"smartfetch/pkg/observability"
	"smartfetch/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig domaincfg.DomainConfig
	Catalog      *aggregates.Catalog
	Repository   ports.ResourceRepository
	Snapshot     health.Snapshot
	Cache        ports.Cache
	Metrics      *observability.Collector
	Hooks        *extensions.HookManager
	RateLimiter  *ratelimit.IPRateLimiter
	AuditLog     ports.AuditLog
	AgentService *services.AgentService
	QueryBus     *querybus.QueryBus
}

// Shutdown releases container-held resources: the audit trail file, the
// cache backend, and buffered log entries
func (c *Container) Shutdown() {
	if closer, ok := c.AuditLog.(io.Closer); ok {
		_ = closer.Close()
	}
	if stopper, ok := c.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := c.Cache.(io.Closer); ok {
		_ = closer.Close()
	}
	_ = c.Logger.Sync()
}
