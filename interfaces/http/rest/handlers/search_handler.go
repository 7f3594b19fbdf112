package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"smartfetch/application/queries"
	querybus "smartfetch/application/queries/bus"
	domaincfg "smartfetch/domain/config"
	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
)

// SearchHandler serves the exact tag search endpoint
type SearchHandler struct {
	queryBus *querybus.QueryBus
	cfg      domaincfg.DomainConfig
	logger   *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(queryBus *querybus.QueryBus, cfg domaincfg.DomainConfig, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		queryBus: queryBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search handles GET /search?tag=X. Unknown tags are not an error: they
// return an empty result set.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	if tag == "" {
		common.RespondDomainError(w, apperrors.ErrMissingTag, "")
		return
	}
	if len(tag) > h.cfg.MaxTagLength {
		echo := tag
		if len(echo) > 50 {
			echo = echo[:50] + "..."
		}
		common.RespondDomainError(w, apperrors.ErrTagTooLong.Clone().WithDetail("tag", echo), "")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SearchByTagQuery{Tag: tag})
	if err != nil {
		respondQueryError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
