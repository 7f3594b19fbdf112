// Package llm adapts the Ollama runtime to the application's language-model
// ports: tag extraction for natural language search and answer synthesis for
// the experimental agent.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/infrastructure/llm/ollama"
)

// maxExtractedTags bounds how many candidate tags one extraction may carry
const maxExtractedTags = 3

// generator is the slice of the runtime client the adapters need
type generator interface {
	Generate(ctx context.Context, prompt string, opts ollama.GenerateOptions) (string, error)
}

// Matcher maps natural language queries onto the closed tag vocabulary.
// It asks the model for a strict JSON verdict and degrades to word-boundary
// keyword matching whenever the model is unavailable or its output unusable.
type Matcher struct {
	generator       generator
	vocabulary      []string
	vocabSet        map[string]bool
	patterns        map[string]*regexp.Regexp
	ambiguityMargin float64
	logger          *zap.Logger
}

// NewMatcher creates a matcher over the given vocabulary. Keyword patterns
// are compiled once here since the vocabulary is fixed for the process
// lifetime.
func NewMatcher(gen generator, vocabulary []string, ambiguityMargin float64, logger *zap.Logger) *Matcher {
	vocabSet := make(map[string]bool, len(vocabulary))
	patterns := make(map[string]*regexp.Regexp, len(vocabulary))
	for _, tag := range vocabulary {
		vocabSet[tag] = true
		patterns[tag] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tag) + `\b`)
	}
	return &Matcher{
		generator:       gen,
		vocabulary:      vocabulary,
		vocabSet:        vocabSet,
		patterns:        patterns,
		ambiguityMargin: ambiguityMargin,
		logger:          logger,
	}
}

// llmVerdict is the strict JSON shape the model is asked to produce
type llmVerdict struct {
	Tag        string   `json:"tag"`
	Confidence float64  `json:"confidence"`
	Alternates []string `json:"alternates"`
	Reasoning  string   `json:"reasoning"`
}

// Extract maps the query onto vocabulary tags. It never returns an error:
// model failures and unusable output both fall back to keyword extraction.
func (m *Matcher) Extract(ctx context.Context, query string) (ports.TagExtraction, error) {
	extraction, err := m.llmExtract(ctx, query)
	if err != nil {
		m.logger.Warn("model extraction failed, falling back to keywords",
			zap.String("query", query),
			zap.Error(err),
		)
		return m.keywordExtract(query), nil
	}
	if extraction.IsEmpty() {
		return m.keywordExtract(query), nil
	}
	return extraction, nil
}

func (m *Matcher) llmExtract(ctx context.Context, query string) (ports.TagExtraction, error) {
	raw, err := m.generator.Generate(ctx, m.buildPrompt(query), ollama.GenerateOptions{
		Temperature: 0,
		JSONFormat:  true,
	})
	if err != nil {
		return ports.TagExtraction{}, err
	}

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		return ports.TagExtraction{}, fmt.Errorf("decoding model verdict: %w", err)
	}

	tags := m.vocabularyTags(verdict)
	if len(tags) == 0 {
		return ports.TagExtraction{}, nil
	}

	confidence := verdict.Confidence
	if confidence <= 0 || confidence > 1 {
		// The model skipped or bungled the score; score by candidate count
		confidence = 1.0
		if len(tags) > 1 {
			confidence = 0.7
		}
	}
	ambiguous := len(tags) > 1 && (1.0-confidence) < m.ambiguityMargin

	m.logger.Info("tags extracted",
		zap.String("query", query),
		zap.Strings("tags", tags),
		zap.Float64("confidence", confidence),
		zap.Bool("ambiguous", ambiguous),
	)

	return ports.TagExtraction{
		Tags:       tags,
		Confidence: confidence,
		Ambiguous:  ambiguous,
		Reasoning:  verdict.Reasoning,
		Source:     ports.ExtractionSourceLLM,
	}, nil
}

// vocabularyTags keeps the verdict's tags that belong to the vocabulary,
// primary first, deduplicated, capped
func (m *Matcher) vocabularyTags(verdict llmVerdict) []string {
	candidates := append([]string{verdict.Tag}, verdict.Alternates...)
	seen := make(map[string]bool, len(candidates))
	tags := make([]string, 0, maxExtractedTags)
	for _, candidate := range candidates {
		tag := strings.ToLower(strings.TrimSpace(candidate))
		if tag == "" || seen[tag] || !m.vocabSet[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxExtractedTags {
			break
		}
	}
	return tags
}

// keywordExtract matches vocabulary tags as whole words in the query
func (m *Matcher) keywordExtract(query string) ports.TagExtraction {
	lowered := strings.ToLower(query)
	matched := make([]string, 0, 2)
	for _, tag := range m.vocabulary {
		if m.patterns[tag].MatchString(lowered) {
			matched = append(matched, tag)
		}
	}

	if len(matched) == 0 {
		m.logger.Info("no tags extracted", zap.String("query", query))
		return ports.TagExtraction{
			Tags:   []string{},
			Source: ports.ExtractionSourceKeyword,
		}
	}

	confidence := 1.0
	if len(matched) > 1 {
		confidence = 0.5
	}

	m.logger.Info("keyword tags extracted",
		zap.String("query", query),
		zap.Strings("tags", matched),
		zap.Float64("confidence", confidence),
	)

	return ports.TagExtraction{
		Tags:       matched,
		Confidence: confidence,
		Ambiguous:  len(matched) > 1,
		Source:     ports.ExtractionSourceKeyword,
	}
}

func (m *Matcher) buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("You classify a natural language query against a fixed set of resource tags.\n\n")
	fmt.Fprintf(&b, "Query: %q\n", query)
	fmt.Fprintf(&b, "Available tags: %s\n\n", strings.Join(m.vocabulary, ", "))
	b.WriteString("Respond with strict JSON only, no prose, in this shape:\n")
	b.WriteString(`{"tag": "<single best tag from the available list>", "confidence": <number between 0 and 1>, "alternates": ["<up to two other plausible tags>"], "reasoning": "<one short sentence>"}`)
	b.WriteString("\nUse an empty string for \"tag\" when no available tag fits the query.")
	return b.String()
}

// stripFences removes a markdown code fence the model may wrap around its
// JSON despite instructions
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
