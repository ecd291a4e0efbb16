package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

const (
	// defaultLegLimit caps how many hits each retrieval leg feeds into fusion.
	defaultLegLimit = 40

	// defaultTopK is how many fused candidates a retrieval returns.
	defaultTopK = 5

	// snippetRunes bounds the review excerpt carried on a candidate.
	snippetRunes = 200
)

// Engine provides hybrid lexical and semantic retrieval over hotel reviews.
type Engine struct {
	documents storage.DocumentRepository
	embedder  ai.Embedder
	reranker  Reranker
	logger    *slog.Logger
	legLimit  int
	topK      int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithReranker sets the rerank strategy applied after fusion.
// Default is NewLexicalReranker().
func WithReranker(reranker Reranker) Option {
	return func(e *Engine) error {
		if reranker != nil {
			e.reranker = reranker
		}
		return nil
	}
}

// WithTopK sets how many candidates a retrieval returns.
func WithTopK(topK int) Option {
	return func(e *Engine) error {
		if topK > 0 {
			e.topK = topK
		}
		return nil
	}
}

// WithLegLimit sets how many hits each retrieval leg contributes to fusion.
func WithLegLimit(limit int) Option {
	return func(e *Engine) error {
		if limit > 0 {
			e.legLimit = limit
		}
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(documents storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		documents: documents,
		embedder:  embedder,
		reranker:  NewLexicalReranker(),
		logger:    slog.Default(),
		legLimit:  defaultLegLimit,
		topK:      defaultTopK,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Retrieve runs both retrieval legs for the query, fuses their scores with
// the given weight and returns the reranked top candidates.
// Alpha is the semantic leg's share of the fused score and must be in [0,1].
func (e *Engine) Retrieve(ctx context.Context, queryText string, filters core.SearchFilters, alpha float64) ([]*core.Candidate, error) {
	return e.RetrieveWithMonitor(ctx, queryText, filters, alpha, nil)
}

// RetrieveWithMonitor is Retrieve with per-stage observability callbacks.
// The monitor receives callbacks at each stage of the retrieval process.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, queryText string, filters core.SearchFilters, alpha float64, monitor Monitor) ([]*core.Candidate, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if alpha < 0 || alpha > 1 {
		return nil, ErrInvalidAlpha
	}

	monitor.Start(queryText, alpha)

	// 1. Lexical leg
	terms := core.Tokenize(queryText)
	lexicalHits, err := e.documents.LexicalCandidates(ctx, terms, filters, e.legLimit)
	if err != nil {
		e.logger.Error("lexical retrieval failed", "query", queryText, "err", err)
		return nil, err
	}
	monitor.AfterLexicalSearch(lexicalHits)

	// 2. Semantic leg. Embedding failure degrades to lexical-only rather than
	// failing the whole retrieval.
	var vectorHits []storage.Hit
	if alpha > 0 {
		vector, embedErr := e.embedder.EmbedText(ctx, queryText)
		if embedErr != nil {
			e.logger.Warn("query embedding failed, continuing lexical-only", "err", embedErr)
		} else {
			vectorHits, err = e.documents.FindSimilar(ctx, vector, filters, e.legLimit)
			if err != nil {
				e.logger.Error("vector retrieval failed", "query", queryText, "err", err)
				return nil, err
			}
		}
	}
	monitor.AfterVectorSearch(vectorHits)

	// 3. Normalize each leg and fuse
	candidates := fuseHits(lexicalHits, vectorHits, alpha)
	monitor.AfterFusion(candidates)

	// 4. Rerank and assign final ranks
	candidates = e.reranker.Rerank(ctx, queryText, candidates)
	for i, c := range candidates {
		c.Rank = i + 1
	}
	monitor.AfterRerank(candidates)

	if len(candidates) > e.topK {
		candidates = candidates[:e.topK]
	}
	monitor.Finish(candidates)

	return candidates, nil
}

// fuseHits combines the two retrieval legs into scored candidates.
// Each leg's scores are min-max normalized over its own result set so the
// fusion weight compares like with like; a document missing from a leg
// contributes zero from that leg.
func fuseHits(lexical, vector []storage.Hit, alpha float64) []*core.Candidate {
	lexicalNorm := normalizeScores(lexical)
	vectorNorm := normalizeScores(vector)

	docs := make(map[core.ID]*core.ReviewDocument, len(lexical)+len(vector))
	for _, h := range lexical {
		docs[h.Document.Id] = h.Document
	}
	for _, h := range vector {
		docs[h.Document.Id] = h.Document
	}

	candidates := make([]*core.Candidate, 0, len(docs))
	for id, doc := range docs {
		c := newCandidate(doc)
		c.LexicalScore = lexicalNorm[id]
		c.VectorScore = vectorNorm[id]
		c.FusedScore = alpha*c.VectorScore + (1-alpha)*c.LexicalScore
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Id < b.Id
	})

	return candidates
}

// normalizeScores min-max normalizes one leg's scores into [0,1].
// A leg whose scores are all equal normalizes to 1.0 for every hit.
func normalizeScores(hits []storage.Hit) map[core.ID]float64 {
	if len(hits) == 0 {
		return nil
	}

	lo, hi := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < lo {
			lo = h.Score
		}
		if h.Score > hi {
			hi = h.Score
		}
	}

	norm := make(map[core.ID]float64, len(hits))
	for _, h := range hits {
		if hi > lo {
			norm[h.Document.Id] = (h.Score - lo) / (hi - lo)
		} else {
			norm[h.Document.Id] = 1.0
		}
	}
	return norm
}

func newCandidate(doc *core.ReviewDocument) *core.Candidate {
	snippet := doc.ReviewText
	if runes := []rune(snippet); len(runes) > snippetRunes {
		snippet = string(runes[:snippetRunes])
	}
	return &core.Candidate{
		Id:          doc.Id,
		HotelName:   doc.HotelName,
		Location:    doc.Location,
		Rating:      doc.Rating,
		ReviewCount: doc.ReviewCount,
		Snippet:     snippet,
		Tags:        doc.Tags,
	}
}
