package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartfetch/application/agent"
	"smartfetch/application/ports"
	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/core/entities"
	"smartfetch/domain/events"
	apperrors "smartfetch/pkg/errors"
	"smartfetch/pkg/extensions"
)

// noEvidenceAnswer is returned when retrieval produced nothing to ground an
// answer on
const noEvidenceAnswer = "I couldn't find sufficient information to answer your query. " +
	"This might be because the query is too specific, too broad, or " +
	"the relevant resources are not yet in the system. " +
	"Try rephrasing your query or making it more specific."

// AgentRequest carries one single-turn agent query
type AgentRequest struct {
	Query          string
	IncludeSources bool
	MaxTokens      int
}

// Citation is a verified source reference attached to an agent answer
type Citation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// AgentResult is the outcome of a completed agent session
type AgentResult struct {
	SessionID string               `json:"session_id"`
	Answer    string               `json:"answer"`
	Sources   []Citation           `json:"sources,omitempty"`
	Status    events.SessionStatus `json:"-"`
}

// agentSession threads per-run state through the pipeline steps
type agentSession struct {
	id        string
	query     string
	maxTokens int
	evidence  []*entities.Resource
	verified  []*entities.Resource
	answer    string
	status    events.SessionStatus
}

// AgentService runs single-turn agent sessions over the catalog.
// Each session is a fixed pipeline: plan the run, retrieve evidence through
// tag extraction, validate every candidate's deep link, synthesize a grounded
// answer. Every step of the run is recorded in the audit trail; audit and
// hook failures never affect the session outcome.
type AgentService struct {
	matcher   ports.TagMatcher
	repo      ports.ResourceRepository
	generator ports.AnswerGenerator
	filter    *ResourceValidationFilter
	audit     ports.AuditLog
	hooks     *extensions.HookManager
	cfg       domaincfg.DomainConfig
	logger    *zap.Logger
}

// NewAgentService creates a new agent service
func NewAgentService(
	matcher ports.TagMatcher,
	repo ports.ResourceRepository,
	generator ports.AnswerGenerator,
	filter *ResourceValidationFilter,
	audit ports.AuditLog,
	hooks *extensions.HookManager,
	cfg domaincfg.DomainConfig,
	logger *zap.Logger,
) *AgentService {
	return &AgentService{
		matcher:   matcher,
		repo:      repo,
		generator: generator,
		filter:    filter,
		audit:     audit,
		hooks:     hooks,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask executes a single-turn agent session and returns the answer with
// optional verified citations. The whole run is bounded by the configured
// agent timeout.
func (s *AgentService) Ask(ctx context.Context, req AgentRequest) (*AgentResult, error) {
	sess := &agentSession{
		id:        uuid.NewString(),
		query:     strings.TrimSpace(req.Query),
		maxTokens: req.MaxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AgentTimeout)
	defer cancel()

	s.recordSessionStart(ctx, sess)

	pipeline := agent.NewBuilder("agent_query", s.logger).
		WithStep("plan", s.planStep).
		WithStep("retrieve", s.retrieveStep).
		WithStep("validate", s.validateStep).
		WithStep("synthesize", s.synthesizeStep).
		Build()

	if _, err := pipeline.Execute(ctx, sess); err != nil {
		return nil, s.failSession(ctx, sess, err)
	}

	result := &AgentResult{
		SessionID: sess.id,
		Answer:    sess.answer,
		Status:    sess.status,
	}
	if req.IncludeSources && sess.status == events.SessionSuccess {
		result.Sources = s.buildCitations(sess.verified)
	}

	s.recordSessionEnd(ctx, sess.id, sess.status, sess.answer)

	return result, nil
}

// planStep normalizes the run inputs before any tool executes
func (s *AgentService) planStep(ctx context.Context, data interface{}) (interface{}, error) {
	sess := data.(*agentSession)

	if sess.query == "" {
		return nil, errors.New("empty query")
	}
	if sess.maxTokens <= 0 {
		sess.maxTokens = s.cfg.DefaultMaxTokens
	}
	if sess.maxTokens > s.cfg.MaxMaxTokens {
		sess.maxTokens = s.cfg.MaxMaxTokens
	}

	return sess, nil
}

// retrieveStep maps the query onto vocabulary tags and pulls the matching
// resources as evidence. Finding nothing is a valid outcome, not a failure.
func (s *AgentService) retrieveStep(ctx context.Context, data interface{}) (interface{}, error) {
	sess := data.(*agentSession)
	params := map[string]string{"query": sess.query}

	extraction, err := s.matcher.Extract(ctx, sess.query)
	if err != nil {
		s.recordToolCall(ctx, sess.id, "search_resources", params, fmt.Sprintf("Error: %v", err))
		return nil, fmt.Errorf("search tool failed: %w", err)
	}

	var resources []*entities.Resource
	if !extraction.IsEmpty() {
		resources, err = s.repo.GetByTags(ctx, extraction.Tags)
		if err != nil {
			s.recordToolCall(ctx, sess.id, "search_resources", params, fmt.Sprintf("Error: %v", err))
			return nil, fmt.Errorf("search tool failed: %w", err)
		}
	}
	if len(resources) > s.cfg.ResultCap {
		resources = resources[:s.cfg.ResultCap]
	}

	sess.evidence = resources
	s.recordToolCall(ctx, sess.id, "search_resources", params, fmt.Sprintf("Found %d results", len(resources)))

	return sess, nil
}

// validateStep screens the evidence through the validation filter. All
// candidates failing verification surfaces as ErrNoValidSources.
func (s *AgentService) validateStep(ctx context.Context, data interface{}) (interface{}, error) {
	sess := data.(*agentSession)

	if len(sess.evidence) == 0 {
		return sess, nil
	}

	verified, err := s.filter.Filter(ctx, sess.query, sess.evidence)
	s.recordToolCall(ctx, sess.id, "validate_resource",
		map[string]string{"candidates": strconv.Itoa(len(sess.evidence))},
		fmt.Sprintf("Valid: %d", len(verified)),
	)
	if err != nil {
		return nil, err
	}

	sess.verified = verified
	return sess, nil
}

// synthesizeStep produces the final answer from the verified evidence
func (s *AgentService) synthesizeStep(ctx context.Context, data interface{}) (interface{}, error) {
	sess := data.(*agentSession)

	if len(sess.verified) == 0 {
		sess.answer = noEvidenceAnswer
		sess.status = events.SessionNoEvidence
		return sess, nil
	}

	answer, err := s.generator.GenerateAnswer(ctx, ports.GenerateRequest{
		Query:     sess.query,
		Evidence:  sess.verified,
		MaxTokens: sess.maxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperrors.ErrServiceUnavailable.Clone().
			WithDetail("operation", "generate").
			WithCause(err)
	}

	sess.answer = answer
	sess.status = events.SessionSuccess
	return sess, nil
}

// failSession classifies a pipeline failure, closes the audit trail, and
// returns the error the boundary should map
func (s *AgentService) failSession(ctx context.Context, sess *agentSession, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.recordSessionEnd(ctx, sess.id, events.SessionTimeout, "")
		return apperrors.ErrAgentTimeout.Clone().
			WithDetail("timeout_seconds", int(s.cfg.AgentTimeout.Seconds())).
			WithCause(err)
	}

	s.recordSessionEnd(ctx, sess.id, events.SessionToolError, "")

	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("agent session %s failed: %w", sess.id, err)
}

// buildCitations shapes the top verified resources into citations
func (s *AgentService) buildCitations(verified []*entities.Resource) []Citation {
	limit := s.cfg.CitationLimit
	if len(verified) < limit {
		limit = len(verified)
	}

	citations := make([]Citation, 0, limit)
	for _, r := range verified[:limit] {
		citations = append(citations, Citation{
			ID:   r.ID().String(),
			Name: r.Name(),
			Link: r.Link().String(),
		})
	}
	return citations
}

// recordSessionStart writes the session opening to the audit trail and fires
// the matching hook. Failures are swallowed; the trail never blocks a run.
func (s *AgentService) recordSessionStart(ctx context.Context, sess *agentSession) {
	defer func() { recover() }()

	event := events.NewSessionStarted(sess.id, sess.query, time.Now().UTC())
	if err := s.audit.RecordSessionStart(ctx, &event); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("session_id", sess.id),
			zap.Error(err),
		)
	}
	if s.hooks != nil {
		s.hooks.Execute(ctx, extensions.HookSessionStarted, event)
	}
}

// recordToolCall writes one tool invocation to the audit trail
func (s *AgentService) recordToolCall(ctx context.Context, sessionID, tool string, params map[string]string, summary string) {
	defer func() { recover() }()

	event := events.NewToolInvoked(sessionID, tool, params, summary, time.Now().UTC())
	if err := s.audit.RecordToolCall(ctx, &event); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("session_id", sessionID),
			zap.String("tool", tool),
			zap.Error(err),
		)
	}
	if s.hooks != nil {
		s.hooks.Execute(ctx, extensions.HookToolInvoked, event)
	}
}

// recordSessionEnd closes the session in the audit trail
func (s *AgentService) recordSessionEnd(ctx context.Context, sessionID string, status events.SessionStatus, answer string) {
	defer func() { recover() }()

	event := events.NewSessionCompleted(sessionID, status, answer, time.Now().UTC())
	if err := s.audit.RecordSessionEnd(ctx, &event); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	if s.hooks != nil {
		s.hooks.Execute(ctx, extensions.HookSessionCompleted, event)
	}
}
