package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

// Lexical field weights. Review text dominates, matching the index's
// purpose of ranking by review content rather than hotel names.
const (
	weightReviewText  = 2.0
	weightReviewTitle = 1.0
	weightHotelName   = 1.0
	weightTag         = 1.5
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the underlying backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// AddDocuments adds or overwrites review documents.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.ReviewDocument) ([]*core.ReviewDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateReviewDocument(doc); err != nil {
				return err
			}

			if doc.Id == 0 {
				doc.Id = core.IDFromContent(doc.HotelName + "|" + doc.Location + "|" + doc.ReviewText)
			}

			now := time.Now().UTC()
			if doc.InsertedAt.IsZero() {
				doc.InsertedAt = now
			}
			doc.UpdatedAt = now

			key := makeDocumentKey(uint64(doc.Id))
			if err := tx.Set(key, storage.MarshalReviewDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.ReviewDocument, error) {
	var doc *core.ReviewDocument

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(uint64(id)))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = storage.UnmarshalReviewDocument(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocuments retrieves multiple documents by their IDs.
// Missing documents are skipped without error.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.ReviewDocument, error) {
	docs := make([]*core.ReviewDocument, 0, len(ids))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeDocumentKey(uint64(id)))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				doc, err := storage.UnmarshalReviewDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(uint64(id))
			if _, err := tx.Get(key); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// LexicalCandidates returns documents matching the query terms under the
// given filters, scored by weighted term frequency, best first.
func (r *DocumentRepository) LexicalCandidates(ctx context.Context, terms []string, filters core.SearchFilters, limit int) ([]storage.Hit, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []storage.Hit
	err := r.scanDocuments(ctx, func(doc *core.ReviewDocument) {
		if !matchesFilters(doc, filters) {
			return
		}
		score := lexicalScore(doc, terms)
		if score > 0 {
			hits = append(hits, storage.Hit{Document: doc, Score: score})
		}
	})
	if err != nil {
		return nil, err
	}

	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// FindSimilar returns documents similar to the given vector under the
// given filters, scored by cosine similarity, best first.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, filters core.SearchFilters, limit int) ([]storage.Hit, error) {
	if len(vector) == 0 {
		return nil, nil
	}

	var hits []storage.Hit
	err := r.scanDocuments(ctx, func(doc *core.ReviewDocument) {
		if len(doc.Vector) == 0 || !matchesFilters(doc, filters) {
			return
		}
		score := dotProduct(vector, doc.Vector)
		if score > 0 {
			hits = append(hits, storage.Hit{Document: doc, Score: score})
		}
	})
	if err != nil {
		return nil, err
	}

	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// CountDocuments returns the number of indexed documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scanDocuments iterates every indexed document, honoring context cancellation.
func (r *DocumentRepository) scanDocuments(ctx context.Context, visit func(*core.ReviewDocument)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalReviewDocument(val)
				if err != nil {
					return err
				}
				visit(doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// matchesFilters applies the hard pre-filters. Documents failing any
// filter never reach score fusion.
func matchesFilters(doc *core.ReviewDocument, filters core.SearchFilters) bool {
	if filters.Location != "" && !locationMatches(doc.Location, filters.Location) {
		return false
	}
	if filters.MinRating > 0 && doc.Rating < filters.MinRating {
		return false
	}
	if filters.MaxPrice > 0 && doc.PriceNight > 0 && doc.PriceNight > filters.MaxPrice {
		return false
	}
	if len(filters.RequireTags) > 0 && !matchesAnyTag(doc, filters.RequireTags) {
		return false
	}
	return true
}

// locationMatches compares locations case-insensitively, allowing the
// stored location to carry extra qualifiers ("Paris, France" matches "Paris").
func locationMatches(stored, wanted string) bool {
	return strings.Contains(strings.ToLower(stored), strings.ToLower(wanted))
}

// matchesAnyTag reports whether the document carries at least one of the
// required soft-preference terms, in its tags or its review text.
func matchesAnyTag(doc *core.ReviewDocument, required []string) bool {
	docTokens := core.TokenSet(doc.ReviewText)
	for _, tag := range doc.Tags {
		docTokens[strings.ToLower(tag)] = true
	}
	for _, term := range required {
		if docTokens[strings.ToLower(term)] {
			return true
		}
	}
	return false
}

// lexicalScore computes a weighted term-frequency score for the document.
func lexicalScore(doc *core.ReviewDocument, terms []string) float64 {
	textTokens := core.Tokenize(doc.ReviewText)
	titleTokens := core.Tokenize(doc.ReviewTitle)
	nameTokens := core.Tokenize(doc.HotelName)

	tagSet := make(map[string]bool, len(doc.Tags))
	for _, tag := range doc.Tags {
		tagSet[strings.ToLower(tag)] = true
	}

	var score float64
	for _, term := range terms {
		lower := strings.ToLower(term)
		score += weightReviewText * float64(countToken(textTokens, lower))
		score += weightReviewTitle * float64(countToken(titleTokens, lower))
		score += weightHotelName * float64(countToken(nameTokens, lower))
		if tagSet[lower] {
			score += weightTag
		}
	}
	return score
}

func countToken(tokens []string, term string) int {
	count := 0
	for _, token := range tokens {
		if token == term {
			count++
		}
	}
	return count
}

// sortHits orders hits by score descending, then rating descending,
// then ID ascending for determinism.
func sortHits(hits []storage.Hit) {
	slices.SortFunc(hits, func(a, b storage.Hit) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Document.Rating != b.Document.Rating {
			if a.Document.Rating > b.Document.Rating {
				return -1
			}
			return 1
		}
		if a.Document.Id != b.Document.Id {
			if a.Document.Id < b.Document.Id {
				return -1
			}
			return 1
		}
		return 0
	})
}
