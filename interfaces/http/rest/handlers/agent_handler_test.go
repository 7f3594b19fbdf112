package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartfetch/application/services"
	domaincfg "smartfetch/domain/config"
	"smartfetch/infrastructure/health"
	apperrors "smartfetch/pkg/errors"
)

type stubAgent struct {
	req    services.AgentRequest
	result *services.AgentResult
	err    error
	called bool
}

func (s *stubAgent) Ask(ctx context.Context, req services.AgentRequest) (*services.AgentResult, error) {
	s.called = true
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newAgentHandler(agent *stubAgent, snapshot health.Snapshot) *AgentHandler {
	return NewAgentHandler(agent, snapshot, *domaincfg.DefaultDomainConfig(), zap.NewNop())
}

func agentRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/experimental/agent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAgentHandler_Ask_UnhealthySnapshotIs503(t *testing.T) {
	// Arrange
	agent := &stubAgent{}
	h := newAgentHandler(agent, unhealthySnapshot())
	rec := httptest.NewRecorder()

	// Act
	h.Ask(rec, agentRequest(`{"query":"which water filter should I buy?"}`))

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeEnvelope(t, rec).Error.Code)
	assert.False(t, agent.called)
}

func TestAgentHandler_Ask_RejectsMalformedBody(t *testing.T) {
	h := newAgentHandler(&stubAgent{}, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{"query":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeEnvelope(t, rec).Error.Code)
}

func TestAgentHandler_Ask_RejectsUnknownFields(t *testing.T) {
	h := newAgentHandler(&stubAgent{}, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{"query":"q","temperature":0.7}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeEnvelope(t, rec).Error.Code)
}

func TestAgentHandler_Ask_RejectsMissingQuery(t *testing.T) {
	h := newAgentHandler(&stubAgent{}, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestAgentHandler_Ask_RejectsOverlongQuery(t *testing.T) {
	h := newAgentHandler(&stubAgent{}, healthySnapshot())
	rec := httptest.NewRecorder()

	body, err := json.Marshal(map[string]string{"query": strings.Repeat("q", 4097)})
	require.NoError(t, err)
	h.Ask(rec, agentRequest(string(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestAgentHandler_Ask_MaxTokensBounds(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
		wantCode  string
	}{
		{name: "below minimum", maxTokens: 50, wantCode: "INVALID_MAX_TOKENS"},
		{name: "above maximum", maxTokens: 9000, wantCode: "INVALID_MAX_TOKENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &stubAgent{}
			h := newAgentHandler(agent, healthySnapshot())
			rec := httptest.NewRecorder()

			body, err := json.Marshal(map[string]interface{}{"query": "q", "max_tokens": tt.maxTokens})
			require.NoError(t, err)
			h.Ask(rec, agentRequest(string(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.False(t, agent.called)
		})
	}
}

func TestAgentHandler_Ask_OmittedMaxTokensPassesZero(t *testing.T) {
	agent := &stubAgent{result: &services.AgentResult{SessionID: "s", Answer: "a"}}
	h := newAgentHandler(agent, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{"query":"which water filter should I buy?"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, agent.called)
	assert.Zero(t, agent.req.MaxTokens)
	assert.False(t, agent.req.IncludeSources)
}

func TestAgentHandler_Ask_Success(t *testing.T) {
	agent := &stubAgent{result: &services.AgentResult{
		SessionID: "3f2c8a1e",
		Answer:    "The AquaPure Filter fits under-sink installs.",
		Sources: []services.Citation{
			{ID: "id-1", Name: "AquaPure Filter", Link: "https://resources.internal/items/id-1"},
		},
	}}
	h := newAgentHandler(agent, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{"query":"which water filter should I buy?","include_sources":true,"max_tokens":2048}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, agent.called)
	assert.True(t, agent.req.IncludeSources)
	assert.Equal(t, 2048, agent.req.MaxTokens)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.True(t, env.Meta.Experimental)

	var data services.AgentResult
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "3f2c8a1e", data.SessionID)
	require.Len(t, data.Sources, 1)
	assert.Equal(t, "AquaPure Filter", data.Sources[0].Name)
}

func TestAgentHandler_Ask_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperrors.DomainError
		wantStatus int
		wantCode   string
	}{
		{name: "timeout", err: apperrors.ErrAgentTimeout, wantStatus: http.StatusGatewayTimeout, wantCode: "AGENT_TIMEOUT"},
		{name: "no valid sources", err: apperrors.ErrNoValidSources, wantStatus: http.StatusNotFound, wantCode: "NO_VALID_SOURCES"},
		{name: "runtime unavailable", err: apperrors.ErrServiceUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &stubAgent{err: tt.err}
			h := newAgentHandler(agent, healthySnapshot())
			rec := httptest.NewRecorder()

			h.Ask(rec, agentRequest(`{"query":"q"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAgentHandler_Ask_UnexpectedErrorIs500(t *testing.T) {
	agent := &stubAgent{err: assert.AnError}
	h := newAgentHandler(agent, healthySnapshot())
	rec := httptest.NewRecorder()

	h.Ask(rec, agentRequest(`{"query":"q"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeEnvelope(t, rec).Error.Code)
}
