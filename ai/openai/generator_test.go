package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
)

func newTestGenerator(model *fakeModel) *ResponseGenerator {
	return &ResponseGenerator{
		client:      model,
		temperature: 0.3,
		logger:      slog.Default(),
	}
}

func sampleView() *ai.StateView {
	return &ai.StateView{
		Query: "quiet hotel in Paris",
		Parsed: &core.TravelQuery{
			Destination: "Paris",
			CheckIn:     time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			CheckOut:    time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
			PartySize:   2,
			BudgetMax:   200,
			Atmosphere:  []string{"quiet"},
		},
		Candidates: []*core.Candidate{
			{
				Rank: 1, HotelName: "Hush Harbor", Location: "Paris", Rating: 4.7,
				Snippet:     "wonderfully calm rooms",
				Decorations: map[string]string{"nightly_price": "178 USD"},
			},
			{Rank: 2, HotelName: "Still Waters", Location: "Paris", Rating: 4.5},
		},
		Enrichment: &core.Enrichment{
			Weather: []core.DayForecast{
				{Date: time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC), Description: "clear sky", TempMin: 2, TempMax: 8},
			},
			Safety: &core.SafetyInfo{
				Country: "France", Region: "Europe", Capital: "Paris", Currency: "EUR",
				Tips: []string{"Confirm visa and entry requirements for France."},
			},
			Activities: []core.ActivitySuggestion{
				{Day: 1, Slot: core.SlotMorning, Name: "park walk", Duration: "1-2 hours", Cost: "free"},
				{Slot: core.SlotSpecial, Name: "Seine river cruise", Duration: "1 hour", Cost: "medium"},
			},
		},
	}
}

func TestGenerateResponse(t *testing.T) {
	t.Run("fully satisfied request closes the turn", func(t *testing.T) {
		model := &fakeModel{response: "I found two lovely quiet hotels for you."}
		generator := newTestGenerator(model)

		// Destination, dates and candidates with no relaxation: complete.
		resp, err := generator.GenerateResponse(context.Background(), sampleView())
		require.NoError(t, err)
		assert.Equal(t, "I found two lovely quiet hotels for you.", resp.Text)
		assert.False(t, resp.NeedsFeedback)
	})

	t.Run("relaxed search requests feedback", func(t *testing.T) {
		model := &fakeModel{response: "I had to widen the search; would any of these work?"}
		generator := newTestGenerator(model)

		view := sampleView()
		view.SearchRelaxed = true
		view.RelaxationNote = "I widened the search by setting aside your amenity limits."
		resp, err := generator.GenerateResponse(context.Background(), view)
		require.NoError(t, err)
		assert.True(t, resp.NeedsFeedback)
	})

	t.Run("missing stay dates request feedback", func(t *testing.T) {
		model := &fakeModel{response: "When are you traveling?"}
		generator := newTestGenerator(model)

		view := sampleView()
		view.Parsed.CheckIn = time.Time{}
		view.Parsed.CheckOut = time.Time{}
		resp, err := generator.GenerateResponse(context.Background(), view)
		require.NoError(t, err)
		assert.True(t, resp.NeedsFeedback)
	})

	t.Run("no candidates means no feedback request", func(t *testing.T) {
		model := &fakeModel{response: "I could not find anything; when are you traveling?"}
		generator := newTestGenerator(model)

		view := sampleView()
		view.Candidates = nil
		resp, err := generator.GenerateResponse(context.Background(), view)
		require.NoError(t, err)
		assert.False(t, resp.NeedsFeedback)
	})

	t.Run("transport errors surface", func(t *testing.T) {
		model := &fakeModel{err: errors.New("timeout")}
		generator := newTestGenerator(model)

		_, err := generator.GenerateResponse(context.Background(), sampleView())
		assert.Error(t, err)
	})

	t.Run("blank completion is an error", func(t *testing.T) {
		model := &fakeModel{response: "   "}
		generator := newTestGenerator(model)

		_, err := generator.GenerateResponse(context.Background(), sampleView())
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestBuildGenerateContent(t *testing.T) {
	view := sampleView()
	view.SearchRelaxed = true
	view.RelaxationNote = "I widened the search by setting aside your amenity and price limits."

	content := buildGenerateContent(view)

	assert.Contains(t, content, "Traveler message: quiet hotel in Paris")
	assert.Contains(t, content, "destination: Paris")
	assert.Contains(t, content, "2026-12-15 to 2026-12-18")
	assert.Contains(t, content, "Search note: I widened the search")
	assert.Contains(t, content, "1. Hush Harbor (Paris, rating 4.7, ~178 USD/night)")
	assert.Contains(t, content, `review: "wonderfully calm rooms"`)
	assert.Contains(t, content, "clear sky")
	assert.Contains(t, content, "- day 1, morning: park walk (1-2 hours, cost free)")
	assert.Contains(t, content, "- special: Seine river cruise (1 hour, cost medium)")
	assert.Contains(t, content, "Destination facts: France (Europe)")

	t.Run("empty state stays well formed", func(t *testing.T) {
		content := buildGenerateContent(&ai.StateView{Query: "hello"})
		assert.Contains(t, content, "Parsed intent: none")
		assert.Contains(t, content, "Recommended hotels: none found")
	})

	t.Run("history is capped to a short tail", func(t *testing.T) {
		view := sampleView()
		for i := 0; i < 10; i++ {
			view.ChatHistory = append(view.ChatHistory, core.ChatMessage{Role: core.RoleUser, Content: "older"})
		}
		view.ChatHistory = append(view.ChatHistory, core.ChatMessage{Role: core.RoleUser, Content: "newest"})

		content := buildGenerateContent(view)
		assert.Contains(t, content, "newest")
		assert.Equal(t, 5, strings.Count(content, "older"))
	})
}
