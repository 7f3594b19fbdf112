package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/application/queries"
	"smartfetch/pkg/common"
)

// ListResourcesHandler handles full-catalog listing queries
type ListResourcesHandler struct {
	repo   ports.ResourceRepository
	logger *zap.Logger
}

// NewListResourcesHandler creates a new catalog listing handler
func NewListResourcesHandler(repo ports.ResourceRepository, logger *zap.Logger) *ListResourcesHandler {
	return &ListResourcesHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the catalog listing query
func (h *ListResourcesHandler) Handle(ctx context.Context, query queries.ListResourcesQuery) (*queries.ListResourcesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	resources, err := h.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	total := len(resources)

	// Window the catalog when a limit was supplied
	if query.Limit > 0 {
		window := common.PaginationParams{Limit: query.Limit, Offset: query.Offset}
		start, end := window.Window(total)
		resources = resources[start:end]
	}

	h.logger.Debug("resources listed",
		zap.Int("total", total),
		zap.Int("returned", len(resources)),
	)

	return &queries.ListResourcesResult{
		Resources: queries.NewResourceDTOs(resources),
		Count:     len(resources),
		Total:     total,
	}, nil
}
