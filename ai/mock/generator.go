package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/itinera/ai"
)

// MockResponseGenerator is a test double for ai.ResponseGenerator.
// It allows custom behavior injection via function fields.
type MockResponseGenerator struct {
	// GenerateResponseFunc is called by GenerateResponse if set.
	// If nil, uses default deterministic behavior.
	GenerateResponseFunc func(ctx context.Context, view *ai.StateView) (*ai.GeneratedResponse, error)

	callCount int
}

// NewMockResponseGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockResponseGenerator() *MockResponseGenerator {
	return &MockResponseGenerator{}
}

// GenerateResponse composes a minimal deterministic reply: candidate hotel
// names in rank order, prefixed with the relaxation note when present.
// Like the production generator, a fully satisfied request closes the turn;
// NeedsFeedback is set only when candidates are offered but the request is
// still open (relaxed search or missing stay dates).
func (m *MockResponseGenerator) GenerateResponse(ctx context.Context, view *ai.StateView) (*ai.GeneratedResponse, error) {
	m.callCount++

	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, view)
	}

	if len(view.Candidates) == 0 {
		return &ai.GeneratedResponse{
			Text:          "I could not find any hotels matching your request.",
			NeedsFeedback: false,
		}, nil
	}

	names := make([]string, 0, len(view.Candidates))
	for _, c := range view.Candidates {
		names = append(names, c.HotelName)
	}
	text := fmt.Sprintf("Here are some options: %s.", strings.Join(names, ", "))
	if view.SearchRelaxed && view.RelaxationNote != "" {
		text = view.RelaxationNote + " " + text
	}
	return &ai.GeneratedResponse{Text: text, NeedsFeedback: !view.RequestSatisfied()}, nil
}

// CallCount returns the number of times GenerateResponse was called.
func (m *MockResponseGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockResponseGenerator) Reset() {
	m.callCount = 0
	m.GenerateResponseFunc = nil
}
