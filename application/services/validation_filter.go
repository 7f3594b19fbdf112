package services

import (
	"context"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/domain/core/entities"
	apperrors "smartfetch/pkg/errors"
)

// ResourceValidationFilter screens candidate resources before they are cited
// in an answer. Each candidate's deep link is independently verified against
// the catalog; a failing or erroring candidate is dropped and the remaining
// candidates are still processed. Surviving candidates keep their original
// relative order and are never deduplicated.
type ResourceValidationFilter struct {
	verifier ports.LinkVerifier
	logger   *zap.Logger
}

// NewResourceValidationFilter creates a new validation filter
func NewResourceValidationFilter(verifier ports.LinkVerifier, logger *zap.Logger) *ResourceValidationFilter {
	return &ResourceValidationFilter{
		verifier: verifier,
		logger:   logger,
	}
}

// Filter verifies every candidate and returns the valid subsequence.
// An empty candidate list returns an empty result with no error. A non-empty
// list from which every candidate was rejected returns ErrNoValidSources so
// callers can distinguish "nothing cited" from "everything cited was bogus".
func (f *ResourceValidationFilter) Filter(ctx context.Context, query string, candidates []*entities.Resource) ([]*entities.Resource, error) {
	if len(candidates) == 0 {
		return []*entities.Resource{}, nil
	}

	kept := make([]*entities.Resource, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}

		link := candidate.Link()
		ok, err := f.verifier.Verify(ctx, link)
		if err != nil {
			f.logGuarded(func() {
				f.logger.Error("citation verification errored",
					zap.String("name", candidate.Name()),
					zap.String("link", link.String()),
					zap.String("query", query),
					zap.Error(err),
					zap.Stack("stacktrace"),
				)
			})
			continue
		}
		if !ok {
			f.logGuarded(func() {
				f.logger.Warn("hallucination detected - invalid resource",
					zap.String("name", candidate.Name()),
					zap.String("link", link.String()),
					zap.String("query", query),
				)
			})
			continue
		}

		kept = append(kept, candidate)
	}

	if len(kept) == 0 {
		return nil, apperrors.ErrNoValidSources.Clone().
			WithDetail("query", query).
			WithDetail("candidates", len(candidates))
	}

	return kept, nil
}

// logGuarded emits a log entry through a recover guard so a panicking log
// sink can never change the filtering outcome
func (f *ResourceValidationFilter) logGuarded(emit func()) {
	defer func() {
		recover()
	}()
	emit()
}
