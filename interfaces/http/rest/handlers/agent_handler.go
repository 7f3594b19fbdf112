package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"smartfetch/application/services"
	domaincfg "smartfetch/domain/config"
	"smartfetch/infrastructure/health"
	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
	"smartfetch/pkg/utils"
)

// maxAgentBodyBytes bounds the request body read; the query alone is capped
// at 4096 runes so anything near this limit is garbage.
const maxAgentBodyBytes = 64 * 1024

// AgentRunner runs one agent session per request
type AgentRunner interface {
	Ask(ctx context.Context, req services.AgentRequest) (*services.AgentResult, error)
}

// AgentHandler serves the experimental agent endpoint
type AgentHandler struct {
	service  AgentRunner
	snapshot health.Snapshot
	cfg      domaincfg.DomainConfig
	logger   *zap.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(service AgentRunner, snapshot health.Snapshot, cfg domaincfg.DomainConfig, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		service:  service,
		snapshot: snapshot,
		cfg:      cfg,
		logger:   logger,
	}
}

// AgentQueryRequest is the request body for POST /experimental/agent
type AgentQueryRequest struct {
	Query          string `json:"query" validate:"required,max=4096"`
	IncludeSources bool   `json:"include_sources"`
	MaxTokens      int    `json:"max_tokens"`
}

// Ask handles POST /experimental/agent
func (h *AgentHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if !h.snapshot.LLMAvailable() {
		common.RespondDomainError(w, apperrors.ErrServiceUnavailable.Clone().WithDetail("reason", h.snapshot.Message), "")
		return
	}

	var req AgentQueryRequest
	if err := common.ParseJSONBody(r, &req, maxAgentBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.CodeValidationError, err.Error())
		return
	}
	if req.MaxTokens != 0 && (req.MaxTokens < h.cfg.MinMaxTokens || req.MaxTokens > h.cfg.MaxMaxTokens) {
		common.RespondDomainError(w, apperrors.ErrInvalidMaxTokens.Clone().WithDetail("max_tokens", req.MaxTokens), "")
		return
	}

	result, err := h.service.Ask(r.Context(), services.AgentRequest{
		Query:          req.Query,
		IncludeSources: req.IncludeSources,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			common.RespondDomainError(w, domainErr, "")
			return
		}
		h.logger.Error("agent session failed", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, common.CodeInternalError, "Agent session failed")
		return
	}

	meta := &common.MetaInfo{
		RequestID:    middleware.GetReqID(r.Context()),
		Experimental: true,
	}
	common.RespondWithMeta(w, http.StatusOK, result, meta)
}
