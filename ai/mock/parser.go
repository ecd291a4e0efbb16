package mock

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/poiesic/itinera/core"
)

// MockQueryParser is a test double for ai.QueryParser.
// It allows custom behavior injection via function fields.
type MockQueryParser struct {
	// ParseQueryFunc is called by ParseQuery if set.
	// If nil, uses default deterministic behavior.
	ParseQueryFunc func(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error)

	callCount int
}

// NewMockQueryParser creates a mock parser with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockQueryParser() *MockQueryParser {
	return &MockQueryParser{}
}

// ParseQuery extracts a naive travel query from the utterance: the first
// capitalized word after position zero becomes the destination, a default
// party of two is assumed, and known preference words are collected. Dates
// are left unset; an utterance without explicit dates yields an intent that
// still needs refining, mirroring the production parser.
func (m *MockQueryParser) ParseQuery(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
	m.callCount++

	if m.ParseQueryFunc != nil {
		return m.ParseQueryFunc(ctx, utterance, now)
	}

	query := &core.TravelQuery{
		Destination: firstCapitalized(utterance),
		PartySize:   2,
	}
	for _, word := range []string{"quiet", "romantic", "cozy", "luxury"} {
		if strings.Contains(strings.ToLower(utterance), word) {
			query.Atmosphere = append(query.Atmosphere, word)
		}
	}
	for _, word := range []string{"parking", "pool", "breakfast", "wifi"} {
		if strings.Contains(strings.ToLower(utterance), word) {
			query.Amenities = append(query.Amenities, word)
		}
	}
	return query, nil
}

// CallCount returns the number of times ParseQuery was called.
func (m *MockQueryParser) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockQueryParser) Reset() {
	m.callCount = 0
	m.ParseQueryFunc = nil
}

// firstCapitalized returns the first word after the start of the utterance
// that begins with an upper-case letter, with punctuation trimmed.
func firstCapitalized(utterance string) string {
	words := strings.Fields(utterance)
	for i, word := range words {
		if i == 0 {
			continue
		}
		trimmed := strings.Trim(word, ".,!?;:'\"")
		runes := []rune(trimmed)
		if len(runes) > 0 && unicode.IsUpper(runes[0]) {
			return trimmed
		}
	}
	return ""
}
