package storage

import (
	"context"

	"github.com/poiesic/itinera/core"
)

// Hit is one scored result from a single retrieval leg.
// The score's meaning depends on the leg: raw term-frequency weight for
// lexical candidates, cosine similarity for vector candidates.
type Hit struct {
	Document *core.ReviewDocument
	Score    float64
}

// DocumentRepository provides operations for the hotel-review index.
// Hard filters (location, minimum rating, maximum price) are applied
// inside the repository so that filtered documents never reach score
// fusion. An empty result set is not an error.
type DocumentRepository interface {
	// AddDocuments adds or overwrites review documents.
	// Documents with ID=0 get a content-based ID from hotel name,
	// location, and review text.
	AddDocuments(ctx context.Context, docs ...*core.ReviewDocument) ([]*core.ReviewDocument, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.ReviewDocument, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.ReviewDocument, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// LexicalCandidates returns documents matching the query terms under the
	// given filters, scored by term-frequency weight, best first, up to limit.
	LexicalCandidates(ctx context.Context, terms []string, filters core.SearchFilters, limit int) ([]Hit, error)

	// FindSimilar returns documents similar to the given vector under the
	// given filters, scored by cosine similarity, best first, up to limit.
	FindSimilar(ctx context.Context, vector []float32, filters core.SearchFilters, limit int) ([]Hit, error)

	// CountDocuments returns the number of indexed documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// SessionRepository provides durable storage for per-session memory.
type SessionRepository interface {
	// LoadMemory retrieves the memory for a session.
	// Returns (nil, nil) when the session has no stored memory yet;
	// absence is not an error.
	LoadMemory(ctx context.Context, sessionID string) (*core.SessionMemory, error)

	// SaveMemory persists the memory for a session, overwriting any
	// previous snapshot.
	SaveMemory(ctx context.Context, sessionID string, memory *core.SessionMemory) error

	// DeleteSession removes a session's stored memory.
	// Deleting an absent session is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close closes the repository and releases resources.
	Close() error
}
