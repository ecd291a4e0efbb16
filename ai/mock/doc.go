// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.QueryParser,
// ai.ResponseGenerator, ai.Embedder, ai.RelevanceScorer and ai.Provider for
// use in unit tests. The mocks allow tests to run without external AI service
// dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	query, err := mockProvider.QueryParser().ParseQuery(ctx, "hotel in Paris", time.Now())
//
//	// Custom behavior injection
//	mockParser := mock.NewMockQueryParser()
//	mockParser.ParseQueryFunc = func(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
//	    return nil, errors.New("parse failure")
//	}
//
//	// Check call counts
//	count := mockParser.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockQueryParser: Extracts a naive destination and preference words
//   - MockResponseGenerator: Lists candidate hotel names in rank order
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockRelevanceScorer: Scores passages by token overlap with the query
//   - MockProvider: Aggregates the mock services
package mock
