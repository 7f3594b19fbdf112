package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/application/queries"
	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
)

// NLSearchHandler orchestrates natural language search: extract tags from
// the query, map them onto catalog resources, verify deep links, and shape
// guidance for empty or ambiguous outcomes.
type NLSearchHandler struct {
	matcher  ports.TagMatcher
	repo     ports.ResourceRepository
	verifier ports.LinkVerifier
	cfg      domaincfg.DomainConfig
	logger   *zap.Logger
}

// NewNLSearchHandler creates a new natural language search handler
func NewNLSearchHandler(
	matcher ports.TagMatcher,
	repo ports.ResourceRepository,
	verifier ports.LinkVerifier,
	cfg domaincfg.DomainConfig,
	logger *zap.Logger,
) *NLSearchHandler {
	return &NLSearchHandler{
		matcher:  matcher,
		repo:     repo,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the natural language search query
func (h *NLSearchHandler) Handle(ctx context.Context, query queries.NLSearchQuery) (*queries.NLSearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	resultCap := query.Cap
	if resultCap <= 0 {
		resultCap = h.cfg.ResultCap
	}

	extraction, err := h.matcher.Extract(ctx, query.Query)
	if err != nil {
		// Extraction degrades internally; a hard failure is treated as no match
		h.logger.Warn("tag extraction failed",
			zap.String("query", query.Query),
			zap.Error(err),
		)
		extraction = ports.TagExtraction{}
	}

	if extraction.IsEmpty() {
		return h.noMatchResult(ctx, query.Query, extraction)
	}

	if extraction.Ambiguous && len(extraction.Tags) > 1 {
		return h.ambiguousResult(ctx, query.Query, extraction, resultCap)
	}

	resources, err := h.repo.GetByTags(ctx, extraction.Tags)
	if err != nil {
		return nil, err
	}
	h.logger.Info("resources matched",
		zap.String("query", query.Query),
		zap.Strings("tags", extraction.Tags),
		zap.Int("count", len(resources)),
	)

	if len(resources) > resultCap {
		resources = resources[:resultCap]
	}

	items := h.buildItems(resources)
	h.verifyItems(ctx, items)

	return &queries.NLSearchResult{
		Results:    items,
		Count:      len(items),
		Query:      query.Query,
		MatchedTag: extraction.TopTag(),
		Reasoning:  extraction.Reasoning,
	}, nil
}

// noMatchResult suggests a few known tags when nothing in the query mapped
// onto the vocabulary
func (h *NLSearchHandler) noMatchResult(ctx context.Context, query string, extraction ports.TagExtraction) (*queries.NLSearchResult, error) {
	h.logger.Info("no tags extracted", zap.String("query", query))

	tags, err := h.repo.UniqueTags(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) > h.cfg.SuggestionLimit {
		tags = tags[:h.cfg.SuggestionLimit]
	}

	message := fmt.Sprintf(
		"No matching resources found. Try searching with tags like: %s",
		strings.Join(tags, ", "),
	)

	return &queries.NLSearchResult{
		Results:       []queries.NLSearchItem{},
		Count:         0,
		Query:         query,
		CandidateTags: tags,
		Reasoning:     extraction.Reasoning,
		Message:       message,
	}, nil
}

// ambiguousResult returns capped hits across every candidate tag together
// with a refinement prompt
func (h *NLSearchHandler) ambiguousResult(ctx context.Context, query string, extraction ports.TagExtraction, resultCap int) (*queries.NLSearchResult, error) {
	h.logger.Info("ambiguous query detected",
		zap.String("query", query),
		zap.Strings("tags", extraction.Tags),
	)

	resources, err := h.repo.GetByTags(ctx, extraction.Tags)
	if err != nil {
		return nil, err
	}
	if len(resources) > resultCap {
		resources = resources[:resultCap]
	}

	message := fmt.Sprintf(
		"Your query matches multiple categories. Did you mean: %s? Please refine your query.",
		strings.Join(extraction.Tags, ", "),
	)

	items := h.buildItems(resources)

	return &queries.NLSearchResult{
		Results:       items,
		Count:         len(items),
		Query:         query,
		CandidateTags: extraction.Tags,
		Reasoning:     extraction.Reasoning,
		Message:       message,
	}, nil
}

func (h *NLSearchHandler) buildItems(resources []*entities.Resource) []queries.NLSearchItem {
	items := make([]queries.NLSearchItem, 0, len(resources))
	for _, r := range resources {
		items = append(items, queries.NLSearchItem{
			ID:      r.ID().String(),
			Name:    r.Name(),
			Summary: r.Summary(h.cfg.SummaryMaxRunes),
			Tag:     r.Tag().String(),
			Link:    r.Link().String(),
		})
	}
	return items
}

// verifyItems double-checks every outgoing deep link against the catalog.
// Links are built from stored resources, so a failure here indicates a bug;
// it is logged and the item kept.
func (h *NLSearchHandler) verifyItems(ctx context.Context, items []queries.NLSearchItem) {
	for _, item := range items {
		valid, err := h.verifier.Verify(ctx, valueobjects.ParseLink(item.Link))
		if err != nil {
			h.logger.Error("link verification errored",
				zap.String("link", item.Link),
				zap.Error(err),
			)
			continue
		}
		if !valid {
			h.logger.Error("link verification failed",
				zap.String("id", item.ID),
				zap.String("link", item.Link),
			)
		}
	}
}
