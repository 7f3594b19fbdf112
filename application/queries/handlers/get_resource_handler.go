package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/application/queries"
	"smartfetch/domain/core/valueobjects"
	apperrors "smartfetch/pkg/errors"
)

// GetResourceHandler handles single-resource lookup queries
type GetResourceHandler struct {
	repo   ports.ResourceRepository
	logger *zap.Logger
}

// NewGetResourceHandler creates a new resource lookup handler
func NewGetResourceHandler(repo ports.ResourceRepository, logger *zap.Logger) *GetResourceHandler {
	return &GetResourceHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the resource lookup query
func (h *GetResourceHandler) Handle(ctx context.Context, query queries.GetResourceQuery) (*queries.GetResourceResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	id, err := valueobjects.NewResourceIDFromString(query.ID)
	if err != nil {
		return nil, apperrors.ErrInvalidUUID.Clone().WithDetail("id", query.ID)
	}

	resource, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("resource retrieved", zap.String("id", query.ID))

	return &queries.GetResourceResult{Resource: queries.NewResourceDTO(resource)}, nil
}
