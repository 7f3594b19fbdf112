package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/infrastructure/llm/ollama"
)

// evidenceSummaryRunes bounds how much of each resource description enters
// the synthesis prompt
const evidenceSummaryRunes = 200

// AnswerGenerator synthesizes grounded answers for the experimental agent.
// Implements ports.AnswerGenerator.
type AnswerGenerator struct {
	generator generator
	logger    *zap.Logger
}

// NewAnswerGenerator creates an answer generator over the runtime client
func NewAnswerGenerator(gen generator, logger *zap.Logger) *AnswerGenerator {
	return &AnswerGenerator{
		generator: gen,
		logger:    logger,
	}
}

// GenerateAnswer asks the model for an answer grounded in the verified
// evidence. The caller's context carries the agent deadline.
func (g *AnswerGenerator) GenerateAnswer(ctx context.Context, req ports.GenerateRequest) (string, error) {
	text, err := g.generator.Generate(ctx, buildAnswerPrompt(req), ollama.GenerateOptions{
		Temperature: 0.2,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizing answer: %w", err)
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return "", errors.New("model returned an empty answer")
	}

	g.logger.Debug("answer synthesized",
		zap.String("query", req.Query),
		zap.Int("evidence", len(req.Evidence)),
		zap.Int("answer_runes", len([]rune(answer))),
	)

	return answer, nil
}

func buildAnswerPrompt(req ports.GenerateRequest) string {
	var b strings.Builder
	b.WriteString("You answer questions about a catalog of resources. ")
	b.WriteString("Ground your answer only in the evidence below; never invent resources or links.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", req.Query)
	b.WriteString("Evidence:\n")
	for _, resource := range req.Evidence {
		fmt.Fprintf(&b, "- %s: %s (Link: %s)\n",
			resource.Name(),
			resource.Summary(evidenceSummaryRunes),
			resource.Link().String(),
		)
	}
	b.WriteString("\nAnswer the question concisely using only this evidence.")
	return b.String()
}
