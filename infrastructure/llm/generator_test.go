package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartfetch/application/ports"
	"smartfetch/tests/fixtures"
)

func TestAnswerGenerator_GenerateAnswer(t *testing.T) {
	gen := &stubGenerator{response: "  The catalog lists two home resources.  \n"}
	answerer := NewAnswerGenerator(gen, zap.NewNop())
	evidence := fixtures.Resources(2, "home")

	answer, err := answerer.GenerateAnswer(context.Background(), ports.GenerateRequest{
		Query:     "what home resources exist?",
		Evidence:  evidence,
		MaxTokens: 512,
	})

	require.NoError(t, err)
	assert.Equal(t, "The catalog lists two home resources.", answer)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Question: what home resources exist?")
	assert.Contains(t, prompt, evidence[0].Name())
	assert.Contains(t, prompt, "(Link: /resources/"+evidence[0].ID().String()+")")
	assert.Contains(t, prompt, evidence[1].Name())

	require.Len(t, gen.opts, 1)
	assert.Equal(t, 512, gen.opts[0].MaxTokens)
	assert.False(t, gen.opts[0].JSONFormat)
}

func TestAnswerGenerator_GenerateAnswer_EmptyResponse(t *testing.T) {
	answerer := NewAnswerGenerator(&stubGenerator{response: "   "}, zap.NewNop())

	_, err := answerer.GenerateAnswer(context.Background(), ports.GenerateRequest{
		Query:     "anything",
		Evidence:  fixtures.Resources(1, "home"),
		MaxTokens: 256,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty answer")
}

func TestAnswerGenerator_GenerateAnswer_PropagatesDeadline(t *testing.T) {
	answerer := NewAnswerGenerator(&stubGenerator{err: context.DeadlineExceeded}, zap.NewNop())

	_, err := answerer.GenerateAnswer(context.Background(), ports.GenerateRequest{
		Query:     "anything",
		Evidence:  fixtures.Resources(1, "home"),
		MaxTokens: 256,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
