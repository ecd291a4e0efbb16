package openai

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func newTestScorer(model llms.Model) *RelevanceScorer {
	return &RelevanceScorer{
		client: model,
		logger: slog.Default(),
	}
}

func TestScoreRelevance(t *testing.T) {
	passages := []string{
		"A quiet hotel near the river.",
		"Nightclub downstairs, party until dawn.",
		"Family rooms with a pool.",
	}

	t.Run("well-formed scores", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{response: `[9, 1, 4]`})

		scores, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		require.NoError(t, err)
		require.Len(t, scores, 3)
		assert.InDelta(t, 0.9, scores[0], 1e-9)
		assert.InDelta(t, 0.1, scores[1], 1e-9)
		assert.InDelta(t, 0.4, scores[2], 1e-9)
	})

	t.Run("fenced output is stripped", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{response: "```json\n[10, 0, 5]\n```"})

		scores, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, 0.5}, scores)
	})

	t.Run("out-of-range scores are clamped", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{response: `[15, -3, 5]`})

		scores, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, 0.5}, scores)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{response: `[9, 1]`})

		_, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		assert.Error(t, err)
	})

	t.Run("garbage output is an error", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{response: `the first one is best`})

		_, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		assert.Error(t, err)
	})

	t.Run("transport error surfaces", func(t *testing.T) {
		scorer := newTestScorer(&fakeModel{err: assert.AnError})

		_, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", passages)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no passages yields no scores without a model call", func(t *testing.T) {
		model := &fakeModel{response: `[]`}
		scorer := newTestScorer(model)

		scores, err := scorer.ScoreRelevance(context.Background(), "quiet hotel", nil)
		require.NoError(t, err)
		assert.Nil(t, scores)
		assert.Zero(t, model.calls)
	})
}
