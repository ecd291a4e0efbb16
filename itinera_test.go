package itinera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/itinera/ai/mock"
	"github.com/poiesic/itinera/core"
)

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()

	assistant, err := NewAssistant("",
		WithInMemory(),
		WithProvider(mock.NewMockProvider()),
		WithoutEnrichment(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { assistant.Close() })

	return assistant
}

func seedReviews(t *testing.T, assistant *Assistant) {
	t.Helper()

	docs := []*core.ReviewDocument{
		{
			HotelName:   "Hush Harbor",
			Location:    "Paris, France",
			Rating:      4.7,
			ReviewCount: 180,
			ReviewTitle: "Wonderfully quiet hotel",
			ReviewText:  "A quiet hotel near the river, perfect for reading.",
			Tags:        []string{"quiet", "romantic"},
		},
		{
			HotelName:   "Still Waters",
			Location:    "Paris, France",
			Rating:      4.5,
			ReviewCount: 140,
			ReviewTitle: "Calm and cozy",
			ReviewText:  "Such a quiet hotel, we slept like stones.",
			Tags:        []string{"quiet"},
		},
		{
			HotelName:   "Calm Corner",
			Location:    "Paris, France",
			Rating:      4.3,
			ReviewCount: 95,
			ReviewTitle: "Peaceful stay",
			ReviewText:  "Quiet hotel on a side street, helpful staff.",
			Tags:        []string{"quiet"},
		},
	}

	pipeline, err := assistant.NewIngestionPipeline()
	require.NoError(t, err)
	require.NoError(t, pipeline.Ingest(context.Background(), docs...))
	pipeline.Release()
}

func TestNewAssistant(t *testing.T) {
	assistant := newTestAssistant(t)
	assert.NotNil(t, assistant.DocumentRepository())
	assert.NotNil(t, assistant.SessionRepository())
}

func TestAssistantChat(t *testing.T) {
	assistant := newTestAssistant(t)
	seedReviews(t, assistant)

	ctx := context.Background()

	result, err := assistant.Chat(ctx, "", "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionId)
	assert.NotEmpty(t, result.Response)
	assert.Equal(t, core.OutcomeAwaitingFeedback, result.Outcome)

	// Follow-up feedback turn reuses the session.
	followUp, err := assistant.Chat(ctx, result.SessionId, "thanks, that's all!")
	require.NoError(t, err)
	assert.Equal(t, result.SessionId, followUp.SessionId)
	assert.Equal(t, core.OutcomeDone, followUp.Outcome)
}

func TestAssistantSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	provider := mock.NewMockProvider()

	assistant, err := NewAssistant(dir, WithProvider(provider), WithoutEnrichment())
	require.NoError(t, err)
	seedReviews(t, assistant)

	result, err := assistant.Chat(context.Background(), "", "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	require.NoError(t, assistant.Close())

	reopened, err := NewAssistant(dir, WithProvider(mock.NewMockProvider()), WithoutEnrichment())
	require.NoError(t, err)
	defer reopened.Close()

	memory, err := reopened.SessionRepository().LoadMemory(context.Background(), result.SessionId)
	require.NoError(t, err)
	require.NotNil(t, memory)
	assert.Len(t, memory.ChatHistory, 2)
}

func TestAssistantEndSession(t *testing.T) {
	assistant := newTestAssistant(t)
	seedReviews(t, assistant)

	result, err := assistant.Chat(context.Background(), "", "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	require.NoError(t, assistant.EndSession(context.Background(), result.SessionId))

	memory, err := assistant.SessionRepository().LoadMemory(context.Background(), result.SessionId)
	require.NoError(t, err)
	assert.NotNil(t, memory)
}
