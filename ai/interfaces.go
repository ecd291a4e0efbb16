package ai

import (
	"context"
	"time"

	"github.com/poiesic/itinera/core"
)

// QueryParser turns a free-form user utterance into a structured travel query.
// Implementations must be thread-safe for concurrent use.
type QueryParser interface {
	// ParseQuery analyzes the utterance and extracts destination, dates,
	// party size, budget and preference terms. Relative dates ("next weekend")
	// are resolved against now. Returns an error when no structured intent
	// can be recovered from the utterance.
	ParseQuery(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error)
}

// ResponseGenerator produces the assistant's reply for a completed turn.
// Implementations must be thread-safe for concurrent use.
type ResponseGenerator interface {
	// GenerateResponse composes a natural-language answer from the turn's
	// read-only state view: the parsed intent, ranked candidates, enrichment
	// data and any relaxation note. NeedsFeedback signals that the reply asks
	// the user to choose or refine rather than concluding the conversation.
	GenerateResponse(ctx context.Context, view *StateView) (*GeneratedResponse, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RelevanceScorer judges how well candidate passages answer a query.
// Used by the optional cross-encoder reranking strategy.
type RelevanceScorer interface {
	// ScoreRelevance returns one score in [0,1] per passage, in input order.
	ScoreRelevance(ctx context.Context, query string, passages []string) ([]float64, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the parser, generator and embedder instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// QueryParser returns the intent extraction service.
	// The returned QueryParser is safe for concurrent use.
	QueryParser() QueryParser

	// ResponseGenerator returns the reply composition service.
	// The returned ResponseGenerator is safe for concurrent use.
	ResponseGenerator() ResponseGenerator

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
