package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/ai/mock"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/enrich"
	"github.com/poiesic/itinera/search"
	"github.com/poiesic/itinera/storage"
	"github.com/poiesic/itinera/storage/badger"
)

type stubWeather struct {
	err  error
	days []core.DayForecast
}

func (s *stubWeather) Forecast(ctx context.Context, destination string, checkIn, checkOut time.Time) ([]core.DayForecast, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.days, nil
}

type orchestratorHarness struct {
	orch      *Orchestrator
	parser    *mock.MockQueryParser
	generator *mock.MockResponseGenerator
	docs      storage.DocumentRepository
	backend   *badger.Backend
	fanout    *enrich.Fanout
}

func newOrchestratorHarness(t *testing.T, weather enrich.WeatherProvider) *orchestratorHarness {
	t.Helper()

	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	docs := []*core.ReviewDocument{
		{HotelName: "Hush Harbor", Location: "Paris", Rating: 4.7, PriceNight: 180, ReviewText: "a quiet hotel tucked behind the harbor, wonderfully calm"},
		{HotelName: "Still Waters", Location: "Paris", Rating: 4.5, PriceNight: 140, ReviewText: "quiet hotel with thick walls, we slept like stones"},
		{HotelName: "Calm Corner", Location: "Paris", Rating: 4.3, PriceNight: 95, ReviewText: "quiet hotel on a calm corner, simple and tidy"},
		{HotelName: "Soft Nights", Location: "Paris", Rating: 4.1, PriceNight: 80, ReviewText: "quiet hotel, soft beds, kind staff"},
		{HotelName: "Loud Plaza", Location: "Paris", Rating: 3.9, PriceNight: 70, ReviewText: "party hotel right on the plaza, music until dawn"},
		{HotelName: "Roma Quiet", Location: "Rome", Rating: 4.8, PriceNight: 120, ReviewText: "quiet hotel near the forum"},
	}
	_, err = docRepo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)

	engine, err := search.NewEngine(docRepo, mock.NewMockEmbedder(), search.WithTopK(10))
	require.NoError(t, err)

	fanout, err := enrich.NewFanout(weather, enrich.NewHeuristicPrices(), nil, nil,
		enrich.NewLocalActivities(), enrich.WithTaskTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(fanout.Release)

	parser := mock.NewMockQueryParser()
	generator := mock.NewMockResponseGenerator()
	provider := mock.NewMockProviderWithServices(parser, generator, mock.NewMockEmbedder())

	orch, err := NewOrchestrator(engine, provider, WithFanout(fanout))
	require.NoError(t, err)

	return &orchestratorHarness{
		orch:      orch,
		parser:    parser,
		generator: generator,
		docs:      docRepo,
		backend:   backend,
		fanout:    fanout,
	}
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("requires an engine", func(t *testing.T) {
		_, err := NewOrchestrator(nil, mock.NewMockProvider())
		assert.ErrorIs(t, err, ErrEngineRequired)
	})

	t.Run("requires a provider", func(t *testing.T) {
		docRepo, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		engine, err := search.NewEngine(docRepo, mock.NewMockEmbedder())
		require.NoError(t, err)

		_, err = NewOrchestrator(engine, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestAdvance_SearchTurn(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{days: []core.DayForecast{
		{Date: time.Now(), Description: "clear sky", TempMax: 22},
	}})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	assert.Equal(t, "Paris", state.Parsed.Destination)
	assert.Equal(t, core.OutcomeAwaitingFeedback, state.Outcome)
	require.NotEmpty(t, state.Candidates)
	assert.Contains(t, state.Response, state.Candidates[0].HotelName)
	assert.False(t, state.SearchRelaxed)

	assert.Equal(t,
		[]string{"parse_query", "route", "retrieve_candidates", "enrich_parallel", "generate_response", "await_feedback"},
		state.ExecutionPath)

	// Candidates stay inside the destination filter.
	for _, c := range state.Candidates {
		assert.Equal(t, "Paris", c.Location)
	}

	// The turn landed in durable memory.
	require.Len(t, state.Memory.ChatHistory, 2)
	assert.Equal(t, core.RoleUser, state.Memory.ChatHistory[0].Role)
	assert.Equal(t, core.RoleAssistant, state.Memory.ChatHistory[1].Role)
	assert.Len(t, state.Memory.SearchHistory, 1)
}

func TestAdvance_DirectChatWithoutDestination(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "hello there, what can you do?")
	require.NoError(t, err)

	assert.Equal(t, []string{"parse_query", "route", "generate_response", "done"}, state.ExecutionPath)
	assert.Empty(t, state.Candidates)
	assert.NotContains(t, state.ExecutionPath, "retrieve_candidates")
}

func TestAdvance_ParseFailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})
	h.parser.ParseQueryFunc = func(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
		return nil, errors.New("model produced garbage")
	}

	state, err := h.orch.Advance(ctx, nil, "mumble mumble")
	require.ErrorIs(t, err, ErrParseFailure)

	assert.Equal(t, clarificationText, state.Response)
	assert.Equal(t, core.OutcomeDone, state.Outcome)
	assert.Empty(t, state.Memory.ChatHistory)
	assert.Equal(t, []string{"parse_query", "done"}, state.ExecutionPath)
}

func TestAdvance_GenerationFailureRollsBackMemory(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})
	h.generator.GenerateResponseFunc = func(ctx context.Context, view *ai.StateView) (*ai.GeneratedResponse, error) {
		return nil, errors.New("generation backend down")
	}

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.ErrorIs(t, err, ErrGenerationFailure)

	assert.Equal(t, core.OutcomeDone, state.Outcome)
	// The user message survives, the assistant reply was never written.
	require.Len(t, state.Memory.ChatHistory, 1)
	assert.Equal(t, core.RoleUser, state.Memory.ChatHistory[0].Role)
}

func TestAdvance_RetrievalOutageDegrades(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	// Close the index out from under the engine.
	require.NoError(t, h.backend.Close())

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	assert.Empty(t, state.Candidates)
	assert.Equal(t, searchDownNote, state.RelaxationNote)
	assert.Equal(t, core.OutcomeDone, state.Outcome)
	assert.Contains(t, state.ExecutionPath, "generate_response")
}

func TestAdvance_PartialEnrichmentFailure(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{err: errors.New("forecast api down")})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	// Weather failed; the price estimates still decorated the candidates.
	assert.Empty(t, state.Enrichment.Weather)
	require.NotEmpty(t, state.Candidates)
	assert.NotEmpty(t, state.Enrichment.LivePrice)
	assert.Contains(t, state.Candidates[0].Decorations, "nightly_price")
	assert.Equal(t, core.OutcomeAwaitingFeedback, state.Outcome)
}

func TestAdvance_FeedbackTerminate(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	require.Equal(t, core.OutcomeAwaitingFeedback, state.Outcome)

	state, err = h.orch.Advance(ctx, state, "thanks, bye!")
	require.NoError(t, err)

	assert.Equal(t, core.OutcomeDone, state.Outcome)
	assert.Equal(t, farewellText, state.Response)
	assert.Equal(t, []string{"await_feedback", "done"}, state.ExecutionPath)
}

func TestAdvance_FeedbackReparse(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	priorHistory := len(state.Memory.ChatHistory)

	state, err = h.orch.Advance(ctx, state, "actually make it a quiet hotel in Rome instead")
	require.NoError(t, err)

	assert.Equal(t, "Rome", state.Parsed.Destination)
	assert.Equal(t, "await_feedback", state.ExecutionPath[0])
	assert.Equal(t, "parse_query", state.ExecutionPath[1])
	require.NotEmpty(t, state.Candidates)
	assert.Equal(t, "Roma Quiet", state.Candidates[0].HotelName)
	// Exactly one user message was recorded for the re-parsed turn.
	assert.Len(t, state.Memory.ChatHistory, priorHistory+2)
}

func TestAdvance_FeedbackPriceCapTightensRetrieval(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	state, err = h.orch.Advance(ctx, state, "anything under $100 a night?")
	require.NoError(t, err)

	assert.InDelta(t, 100, state.Memory.LearnedPreferences["max_price"], 1e-9)
	assert.Equal(t, "retrieve_candidates", state.ExecutionPath[1])

	// The learned cap now flows into the retrieval filter set.
	filters := h.orch.buildFilters(state.Parsed, state.Memory)
	assert.InDelta(t, 100, filters.MaxPrice, 1e-9)
}

func TestAdvance_FeedbackRejectionHidesShownHotels(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	require.NotEmpty(t, state.Candidates)

	shown := make(map[core.ID]bool, len(state.Candidates))
	for _, c := range state.Candidates {
		shown[c.Id] = true
	}

	state, err = h.orch.Advance(ctx, state, "show me other hotels please")
	require.NoError(t, err)

	for _, c := range state.Candidates {
		assert.False(t, shown[c.Id], "previously shown hotel %s resurfaced", c.HotelName)
	}
	for id := range shown {
		assert.True(t, state.Memory.RejectedIds[id])
	}
}

func TestAdvance_FeedbackContinueChat(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)
	parseCalls := h.parser.CallCount()

	state, err = h.orch.Advance(ctx, state, "what do you think of the first one?")
	require.NoError(t, err)

	assert.Equal(t, []string{"await_feedback", "generate_response", "await_feedback"}, state.ExecutionPath)
	// No re-parse and no new search for plain chat.
	assert.Equal(t, parseCalls, h.parser.CallCount())
	assert.Len(t, state.Memory.SearchHistory, 1)
}

func TestAdvance_LearnedTermsJoinFilters(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{})

	state, err := h.orch.Advance(ctx, nil, "Find me a quiet hotel in Paris")
	require.NoError(t, err)

	state, err = h.orch.Advance(ctx, state, "something cheaper please")
	require.NoError(t, err)

	filters := h.orch.buildFilters(state.Parsed, state.Memory)
	assert.Contains(t, filters.RequireTags, "quiet")
	assert.Contains(t, filters.RequireTags, "cheaper")
}

func TestAdvance_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	h := newOrchestratorHarness(t, &stubWeather{days: []core.DayForecast{
		{Description: "partly cloudy", TempMax: 14, TempMin: 6},
		{Description: "rain", TempMax: 11, TempMin: 5},
		{Description: "clear sky", TempMax: 13, TempMin: 4},
		{Description: "overcast", TempMax: 12, TempMin: 5},
	}})

	h.parser.ParseQueryFunc = func(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
		return &core.TravelQuery{
			Destination: "Paris",
			CheckIn:     time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			CheckOut:    time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
			PartySize:   2,
			Atmosphere:  []string{"romantic", "quiet"},
		}, nil
	}

	state, err := h.orch.Advance(ctx, nil, "We want a romantic, quiet hotel in Paris, Dec 15-18, for two.")
	require.NoError(t, err)

	require.NotEmpty(t, state.Candidates)
	assert.False(t, state.SearchRelaxed)
	// One forecast entry per stay day, Dec 15 through Dec 18.
	assert.Len(t, state.Enrichment.Weather, 4)
	assert.NotEmpty(t, state.Enrichment.LivePrice)

	// Paris is in the activity catalog, so the turn carries day-by-day
	// suggestions covering the whole stay.
	require.NotEmpty(t, state.Enrichment.Activities)
	lastDay := 0
	for _, s := range state.Enrichment.Activities {
		if s.Day > lastDay {
			lastDay = s.Day
		}
	}
	assert.Equal(t, 4, lastDay)

	// A fully specified request that found candidates without relaxing
	// closes the turn instead of asking for more.
	assert.Equal(t, core.OutcomeDone, state.Outcome)
	require.NotEmpty(t, state.ExecutionPath)
	assert.Equal(t, "done", state.ExecutionPath[len(state.ExecutionPath)-1])

	// Ranks are contiguous from one.
	for i, c := range state.Candidates {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestMergeParsed(t *testing.T) {
	prior := &core.TravelQuery{
		Destination: "Paris",
		CheckIn:     time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
		PartySize:   2,
		Atmosphere:  []string{"quiet"},
	}

	t.Run("new fields replace old ones", func(t *testing.T) {
		merged := mergeParsed(prior, &core.TravelQuery{Destination: "Rome"})
		assert.Equal(t, "Rome", merged.Destination)
		assert.Equal(t, 2, merged.PartySize)
		assert.Equal(t, []string{"quiet"}, merged.Atmosphere)
	})

	t.Run("unspecified fields carry over", func(t *testing.T) {
		merged := mergeParsed(prior, &core.TravelQuery{PartySize: 4})
		assert.Equal(t, "Paris", merged.Destination)
		assert.Equal(t, 4, merged.PartySize)
		assert.False(t, merged.CheckIn.IsZero())
	})

	t.Run("nil arguments pass through", func(t *testing.T) {
		assert.Equal(t, prior, mergeParsed(prior, nil))
		next := &core.TravelQuery{Destination: "Rome"}
		assert.Equal(t, next, mergeParsed(nil, next))
	})
}
