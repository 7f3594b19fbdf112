package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartfetch/application/ports"
	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/events"
	apperrors "smartfetch/pkg/errors"
	"smartfetch/pkg/extensions"
	"smartfetch/tests/fixtures"
	"smartfetch/tests/mocks"
)

type agentHarness struct {
	service   *AgentService
	matcher   *mocks.MockTagMatcher
	repo      *mocks.MockResourceRepository
	generator *mocks.MockAnswerGenerator
	verifier  *mocks.MockLinkVerifier
	audit     *mocks.MockAuditLog
	cfg       domaincfg.DomainConfig
}

func newAgentHarness(t *testing.T, resourceCount int, mutate func(cfg *domaincfg.DomainConfig)) *agentHarness {
	t.Helper()

	cfg := *domaincfg.DefaultDomainConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	h := &agentHarness{
		matcher:   mocks.NewMockTagMatcher(),
		repo:      mocks.NewMockResourceRepository(fixtures.Resources(resourceCount, "home")...),
		generator: mocks.NewMockAnswerGenerator("The home resources cover these topics."),
		verifier:  mocks.NewMockLinkVerifier(true),
		audit:     mocks.NewMockAuditLog(),
		cfg:       cfg,
	}

	logger := zap.NewNop()
	filter := NewResourceValidationFilter(h.verifier, logger)
	h.service = NewAgentService(
		h.matcher, h.repo, h.generator, filter,
		h.audit, extensions.NewHookManager(), cfg, logger,
	)
	return h
}

func homeExtraction() ports.TagExtraction {
	return ports.TagExtraction{
		Tags:       []string{"home"},
		Confidence: 1.0,
		Reasoning:  "query mentions home",
		Source:     ports.ExtractionSourceLLM,
	}
}

func TestAgentService_Ask_SuccessWithSources(t *testing.T) {
	h := newAgentHarness(t, 4, nil)
	h.matcher.SetFallback(homeExtraction())

	result, err := h.service.Ask(context.Background(), AgentRequest{
		Query:          "tell me about home resources",
		IncludeSources: true,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "The home resources cover these topics.", result.Answer)
	assert.Equal(t, events.SessionSuccess, result.Status)

	_, err = uuid.Parse(result.SessionID)
	assert.NoError(t, err, "session id must be a UUID")

	// Citations are capped and carry resolvable deep links
	require.Len(t, result.Sources, h.cfg.CitationLimit)
	for _, src := range result.Sources {
		assert.NotEmpty(t, src.ID)
		assert.NotEmpty(t, src.Name)
		assert.Equal(t, "/resources/"+src.ID, src.Link)
	}
}

func TestAgentService_Ask_AuditTrail(t *testing.T) {
	h := newAgentHarness(t, 2, nil)
	h.matcher.SetFallback(homeExtraction())

	result, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})
	require.NoError(t, err)

	require.Len(t, h.audit.Starts, 1)
	assert.Equal(t, result.SessionID, h.audit.Starts[0].SessionID)
	assert.Equal(t, "home stuff", h.audit.Starts[0].Query)

	require.Len(t, h.audit.Tools, 2)
	assert.Equal(t, "search_resources", h.audit.Tools[0].Tool)
	assert.Equal(t, "home stuff", h.audit.Tools[0].Params["query"])
	assert.Equal(t, "Found 2 results", h.audit.Tools[0].ResultSummary)
	assert.Equal(t, "validate_resource", h.audit.Tools[1].Tool)
	assert.Equal(t, "Valid: 2", h.audit.Tools[1].ResultSummary)

	require.Len(t, h.audit.Ends, 1)
	assert.Equal(t, events.SessionSuccess, h.audit.Ends[0].Status)
	assert.Equal(t, result.Answer, h.audit.Ends[0].Answer)
}

func TestAgentService_Ask_NoEvidence(t *testing.T) {
	h := newAgentHarness(t, 3, nil)
	// Matcher extracts nothing; the catalog is never consulted

	result, err := h.service.Ask(context.Background(), AgentRequest{
		Query:          "quantum flux capacitors",
		IncludeSources: true,
	})

	require.NoError(t, err)
	assert.Equal(t, noEvidenceAnswer, result.Answer)
	assert.Equal(t, events.SessionNoEvidence, result.Status)
	assert.Empty(t, result.Sources)
	assert.Empty(t, h.generator.Requests, "generator must not run without evidence")

	require.NotNil(t, h.audit.LastEnd())
	assert.Equal(t, events.SessionNoEvidence, h.audit.LastEnd().Status)
}

func TestAgentService_Ask_AllSourcesInvalid(t *testing.T) {
	h := newAgentHarness(t, 3, nil)
	h.matcher.SetFallback(homeExtraction())
	h.verifier = mocks.NewMockLinkVerifier(false)
	filter := NewResourceValidationFilter(h.verifier, zap.NewNop())
	h.service = NewAgentService(
		h.matcher, h.repo, h.generator, filter,
		h.audit, extensions.NewHookManager(), h.cfg, zap.NewNop(),
	)

	result, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})

	require.Error(t, err)
	assert.Nil(t, result)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_VALID_SOURCES", domainErr.Code)

	require.NotNil(t, h.audit.LastEnd())
	assert.Equal(t, events.SessionToolError, h.audit.LastEnd().Status)
}

func TestAgentService_Ask_Timeout(t *testing.T) {
	h := newAgentHarness(t, 2, func(cfg *domaincfg.DomainConfig) {
		cfg.AgentTimeout = 50 * time.Millisecond
	})
	h.matcher.SetFallback(homeExtraction())
	h.generator.Delay = time.Second

	result, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})

	require.Error(t, err)
	assert.Nil(t, result)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "AGENT_TIMEOUT", domainErr.Code)

	require.NotNil(t, h.audit.LastEnd())
	assert.Equal(t, events.SessionTimeout, h.audit.LastEnd().Status)
}

func TestAgentService_Ask_GeneratorFailure(t *testing.T) {
	h := newAgentHarness(t, 2, nil)
	h.matcher.SetFallback(homeExtraction())
	h.generator.Err = errors.New("model crashed")

	_, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})

	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SERVICE_UNAVAILABLE", domainErr.Code)

	assert.Equal(t, events.SessionToolError, h.audit.LastEnd().Status)
}

func TestAgentService_Ask_AuditFailuresAreSuppressed(t *testing.T) {
	h := newAgentHarness(t, 2, nil)
	h.matcher.SetFallback(homeExtraction())
	h.audit.SetError(errors.New("disk full"))

	result, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})

	require.NoError(t, err)
	assert.Equal(t, "The home resources cover these topics.", result.Answer)
}

func TestAgentService_Ask_AuditPanicsAreSuppressed(t *testing.T) {
	h := newAgentHarness(t, 2, nil)
	h.matcher.SetFallback(homeExtraction())
	h.audit.SetPanic(true)

	var result *AgentResult
	var err error
	require.NotPanics(t, func() {
		result, err = h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})
	})

	require.NoError(t, err)
	assert.Equal(t, events.SessionSuccess, result.Status)
}

func TestAgentService_Ask_TokenBounds(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
		want      int
	}{
		{name: "zero uses default", maxTokens: 0, want: 1024},
		{name: "explicit value kept", maxTokens: 2048, want: 2048},
		{name: "oversized clamped", maxTokens: 100000, want: 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAgentHarness(t, 2, nil)
			h.matcher.SetFallback(homeExtraction())

			_, err := h.service.Ask(context.Background(), AgentRequest{
				Query:     "home stuff",
				MaxTokens: tt.maxTokens,
			})

			require.NoError(t, err)
			require.Len(t, h.generator.Requests, 1)
			assert.Equal(t, tt.want, h.generator.Requests[0].MaxTokens)
		})
	}
}

func TestAgentService_Ask_EvidenceIsCapped(t *testing.T) {
	h := newAgentHarness(t, 20, nil)
	h.matcher.SetFallback(homeExtraction())

	_, err := h.service.Ask(context.Background(), AgentRequest{Query: "home stuff"})

	require.NoError(t, err)
	require.Len(t, h.generator.Requests, 1)
	assert.Len(t, h.generator.Requests[0].Evidence, h.cfg.ResultCap)
}

func BenchmarkAgentService_Ask(b *testing.B) {
	cfg := *domaincfg.DefaultDomainConfig()
	matcher := mocks.NewMockTagMatcher()
	matcher.SetFallback(homeExtraction())
	repo := mocks.NewMockResourceRepository(fixtures.Resources(5, "home")...)
	generator := mocks.NewMockAnswerGenerator("answer")
	verifier := mocks.NewMockLinkVerifier(true)
	logger := zap.NewNop()

	service := NewAgentService(
		matcher, repo, generator,
		NewResourceValidationFilter(verifier, logger),
		mocks.NewMockAuditLog(), extensions.NewHookManager(), cfg, logger,
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = service.Ask(context.Background(), AgentRequest{Query: "home stuff"})
	}
}
