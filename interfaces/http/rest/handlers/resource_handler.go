package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartfetch/application/queries"
	querybus "smartfetch/application/queries/bus"
	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
)

// ResourceHandler serves the resource catalog endpoints
type ResourceHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetResource handles GET /resources/{id}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		common.RespondDomainError(w, apperrors.ErrInvalidUUID.Clone().WithDetail("id", id), "")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetResourceQuery{ID: id})
	if err != nil {
		respondQueryError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListResources handles GET /resources. Without pagination parameters the
// whole catalog is returned; with them the response carries pagination meta.
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	params, supplied := common.ExtractPaginationParams(r)

	query := queries.ListResourcesQuery{}
	if supplied {
		query.Limit = params.Limit
		query.Offset = params.Offset
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondQueryError(w, h.logger, err)
		return
	}

	if supplied {
		if list, ok := result.(*queries.ListResourcesResult); ok {
			meta := &common.MetaInfo{
				Pagination: common.BuildPaginationMeta(params.Limit, params.Offset, list.Total),
			}
			common.RespondWithMeta(w, http.StatusOK, list, meta)
			return
		}
	}

	common.RespondJSON(w, http.StatusOK, result)
}
