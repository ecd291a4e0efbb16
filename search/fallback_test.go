package search

import (
	"context"
	"testing"

	"github.com/poiesic/itinera/ai/mock"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFallbackDocs(t *testing.T, ctx context.Context) (*Engine, func()) {
	t.Helper()

	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	docs := []*core.ReviewDocument{
		{HotelName: "Garden Court", Location: "Paris", Rating: 4.6, ReviewText: "quiet hotel with a lovely garden"},
		{HotelName: "Garden View", Location: "Paris", Rating: 4.4, ReviewText: "quiet hotel, rooms face the garden"},
		{HotelName: "Garden Gate", Location: "Paris", Rating: 4.2, ReviewText: "quiet hotel by the garden gate"},
		{HotelName: "Plain Stay", Location: "Paris", Rating: 4.1, ReviewText: "quiet hotel, nothing fancy"},
		{HotelName: "Budget Bunk", Location: "Paris", Rating: 3.2, ReviewText: "quiet hotel for thrifty travelers"},
		{HotelName: "Roma Rest", Location: "Rome", Rating: 4.8, ReviewText: "quiet hotel near the forum"},
	}
	_, err = docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)

	engine, err := NewEngine(docRepo, mock.NewMockEmbedder(), WithTopK(10))
	require.NoError(t, err)

	return engine, func() { backend.Close() }
}

func TestSearchWithFallback_NoRelaxationNeeded(t *testing.T) {
	ctx := context.Background()
	engine, cleanup := seedFallbackDocs(t, ctx)
	defer cleanup()

	filters := core.SearchFilters{Location: "Paris", MinRating: 4.0, RequireTags: []string{"garden"}}
	result, err := engine.SearchWithFallback(ctx, "quiet hotel", filters, 0)
	require.NoError(t, err)

	assert.Equal(t, stageFullFilters, result.Stage)
	assert.False(t, result.Relaxed)
	assert.Empty(t, result.Note)
	assert.GreaterOrEqual(t, len(result.Candidates), FallbackThreshold)
}

func TestSearchWithFallback_DropsPreferenceFilters(t *testing.T) {
	ctx := context.Background()
	engine, cleanup := seedFallbackDocs(t, ctx)
	defer cleanup()

	// Only two Paris docs mention a terrace, so the full filters come up
	// short and stage 2 must widen to rating-only.
	filters := core.SearchFilters{Location: "Paris", MinRating: 4.0, RequireTags: []string{"terrace"}}
	result, err := engine.SearchWithFallback(ctx, "quiet hotel", filters, 0)
	require.NoError(t, err)

	assert.Equal(t, stageRatingOnly, result.Stage)
	assert.True(t, result.Relaxed)
	assert.NotEmpty(t, result.Note)
	assert.GreaterOrEqual(t, len(result.Candidates), FallbackThreshold)
	for _, c := range result.Candidates {
		assert.GreaterOrEqual(t, c.Rating, 4.0)
	}
}

func TestSearchWithFallback_DestinationOnly(t *testing.T) {
	ctx := context.Background()
	engine, cleanup := seedFallbackDocs(t, ctx)
	defer cleanup()

	// A 4.9 rating floor matches nothing in Paris at stages 1 and 2.
	filters := core.SearchFilters{Location: "Paris", MinRating: 4.9, RequireTags: []string{"garden"}}
	result, err := engine.SearchWithFallback(ctx, "quiet hotel", filters, 0)
	require.NoError(t, err)

	assert.Equal(t, stageDestinationOnly, result.Stage)
	assert.True(t, result.Relaxed)
	assert.Contains(t, result.Note, "Paris")
	assert.GreaterOrEqual(t, len(result.Candidates), FallbackThreshold)
}

func TestSearchWithFallback_NeverSkipsStageTwo(t *testing.T) {
	ctx := context.Background()
	engine, cleanup := seedFallbackDocs(t, ctx)
	defer cleanup()

	monitor := &recordingMonitor{}
	filters := core.SearchFilters{Location: "Paris", MinRating: 4.9}
	_, err := engine.SearchWithFallbackMonitor(ctx, "quiet hotel", filters, 0, monitor)
	require.NoError(t, err)

	assert.Equal(t, []int{stageFullFilters, stageRatingOnly, stageDestinationOnly}, monitor.stages)
}

func TestSearchWithFallback_ExhaustedStillReturns(t *testing.T) {
	ctx := context.Background()
	engine, cleanup := seedFallbackDocs(t, ctx)
	defer cleanup()

	// Only one document exists for Rome, below the threshold even at stage 3.
	filters := core.SearchFilters{Location: "Rome", MinRating: 4.9, RequireTags: []string{"garden"}}
	result, err := engine.SearchWithFallback(ctx, "quiet hotel", filters, 0)
	require.NoError(t, err)

	assert.Equal(t, stageDestinationOnly, result.Stage)
	assert.True(t, result.Relaxed)
	assert.Len(t, result.Candidates, 1)
}
