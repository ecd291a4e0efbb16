package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/itinera/ai"
)

const scorePromptTemplate = `You are a relevance judge for hotel search.
Given a traveler's query and a numbered list of review passages, score how
well each passage answers the query.

Respond with ONLY a JSON array of numbers between 0 and 10, one per passage,
in the same order. No other text.

Query: %s

Passages:
%s`

// RelevanceScorer implements ai.RelevanceScorer with a chat model asked to
// judge passages in one call. Used by the cross rerank strategy; callers are
// expected to tolerate errors, so this type does not retry.
type RelevanceScorer struct {
	client llms.Model
	logger *slog.Logger
}

func newRelevanceScorer(config *ai.Config) (*RelevanceScorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &RelevanceScorer{
		client: client,
		logger: slog.Default().With("component", "relevance-scorer"),
	}, nil
}

// NewRelevanceScorer creates a relevance scorer using the provided configuration.
//
// Returns ai.RelevanceScorer interface to enforce abstraction.
func NewRelevanceScorer(config *ai.Config) (ai.RelevanceScorer, error) {
	return newRelevanceScorer(config)
}

// ScoreRelevance returns one score in [0,1] per passage, in input order.
func (s *RelevanceScorer) ScoreRelevance(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for i, passage := range passages {
		fmt.Fprintf(&list, "%d. %s\n", i+1, passage)
	}

	prompt := fmt.Sprintf(scorePromptTemplate, query, list.String())
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := s.client.GenerateContent(ctx, messages,
		llms.WithTemperature(0.0),
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("relevance model returned no choices")
	}

	raw := repairJSON(stripFences(resp.Choices[0].Content))

	var scores []float64
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		s.logger.Debug("unscorable relevance output", "err", err)
		return nil, fmt.Errorf("malformed relevance scores: %w", err)
	}
	if len(scores) != len(passages) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(passages), len(scores))
	}

	for i, score := range scores {
		scores[i] = clampUnit(score / 10)
	}
	return scores, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
