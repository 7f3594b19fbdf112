package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/application/queries"
)

// SearchByTagHandler handles exact-tag search queries
type SearchByTagHandler struct {
	repo   ports.ResourceRepository
	logger *zap.Logger
}

// NewSearchByTagHandler creates a new tag search handler
func NewSearchByTagHandler(repo ports.ResourceRepository, logger *zap.Logger) *SearchByTagHandler {
	return &SearchByTagHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the tag search query. An unknown tag is not an error;
// it yields an empty result set.
func (h *SearchByTagHandler) Handle(ctx context.Context, query queries.SearchByTagQuery) (*queries.SearchByTagResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	resources, err := h.repo.GetByTag(ctx, query.Tag)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("tag search executed",
		zap.String("tag", query.Tag),
		zap.Int("count", len(resources)),
	)

	return &queries.SearchByTagResult{
		Resources: queries.NewResourceDTOs(resources),
		Count:     len(resources),
		Tag:       query.Tag,
	}, nil
}
