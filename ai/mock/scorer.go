package mock

import (
	"context"

	"github.com/poiesic/itinera/core"
)

// MockRelevanceScorer is a test double for ai.RelevanceScorer.
// It allows custom behavior injection via function fields.
type MockRelevanceScorer struct {
	// ScoreRelevanceFunc is called by ScoreRelevance if set.
	// If nil, uses default deterministic behavior.
	ScoreRelevanceFunc func(ctx context.Context, query string, passages []string) ([]float64, error)

	callCount int
}

// NewMockRelevanceScorer creates a mock scorer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockRelevanceScorer() *MockRelevanceScorer {
	return &MockRelevanceScorer{}
}

// ScoreRelevance scores each passage by token overlap with the query.
func (m *MockRelevanceScorer) ScoreRelevance(ctx context.Context, query string, passages []string) ([]float64, error) {
	m.callCount++

	if m.ScoreRelevanceFunc != nil {
		return m.ScoreRelevanceFunc(ctx, query, passages)
	}

	scores := make([]float64, len(passages))
	for i, passage := range passages {
		scores[i] = core.OverlapRatio(query, passage)
	}
	return scores, nil
}

// CallCount returns the number of times ScoreRelevance was called.
func (m *MockRelevanceScorer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockRelevanceScorer) Reset() {
	m.callCount = 0
	m.ScoreRelevanceFunc = nil
}
