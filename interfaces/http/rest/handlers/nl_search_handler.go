package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"smartfetch/application/queries"
	querybus "smartfetch/application/queries/bus"
	domaincfg "smartfetch/domain/config"
	"smartfetch/infrastructure/health"
	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
)

// NLSearchHandler serves the natural language search endpoint
type NLSearchHandler struct {
	queryBus *querybus.QueryBus
	snapshot health.Snapshot
	cfg      domaincfg.DomainConfig
	logger   *zap.Logger
}

// NewNLSearchHandler creates a new natural language search handler
func NewNLSearchHandler(queryBus *querybus.QueryBus, snapshot health.Snapshot, cfg domaincfg.DomainConfig, logger *zap.Logger) *NLSearchHandler {
	return &NLSearchHandler{
		queryBus: queryBus,
		snapshot: snapshot,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search handles GET /nl/search?q=...
//
// The result is written without inspecting its concrete type: on a cache hit
// the bus returns the stored JSON verbatim rather than a typed result.
func (h *NLSearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		common.RespondDomainError(w, apperrors.ErrMissingQuery, "")
		return
	}
	if utf8.RuneCountInString(query) > h.cfg.MaxNLQueryLength {
		common.RespondDomainError(w, apperrors.ErrQueryTooLong.Clone().WithDetail("max_length", h.cfg.MaxNLQueryLength), "")
		return
	}
	if !h.snapshot.LLMAvailable() {
		common.RespondDomainError(w, apperrors.ErrServiceUnavailable.Clone().WithDetail("reason", h.snapshot.Message), "")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.NLSearchQuery{Query: query})
	if err != nil {
		respondQueryError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
