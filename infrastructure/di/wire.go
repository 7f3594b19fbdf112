//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"smartfetch/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideCatalog,
	ProvideRepository,
	ProvideMetrics,
	ProvideHookManager,
	ProvideOllamaClient,
	ProvideSnapshot,
	ProvideTagMatcher,
	ProvideAnswerGenerator,
	ProvideLinkVerifier,
	ProvideValidationFilter,
	ProvideAuditLog,
	ProvideAgentService,
	ProvideCache,
	ProvideRateLimiter,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
