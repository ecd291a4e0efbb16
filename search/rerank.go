package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
)

// Reranker reorders fused candidates against the query text.
// Implementations decide order only: FusedScore is fixed at fusion time and
// must never be rewritten by a reranking pass.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []*core.Candidate) []*core.Candidate
}

// blend weights for the default reranker.
const (
	overlapWeight = 0.5
	fusedWeight   = 0.5
)

// LexicalReranker is the default strategy: it blends the token-overlap ratio
// between the query and each candidate's text with the candidate's fused
// score, then stable-sorts descending on the blend. A query with no usable
// tokens leaves the fusion order untouched.
type LexicalReranker struct{}

// NewLexicalReranker creates the default rerank strategy.
func NewLexicalReranker() *LexicalReranker {
	return &LexicalReranker{}
}

// Rerank implements Reranker.
func (r *LexicalReranker) Rerank(_ context.Context, query string, candidates []*core.Candidate) []*core.Candidate {
	if len(core.Tokenize(query)) == 0 {
		return candidates
	}

	blended := make([]float64, len(candidates))
	for i, c := range candidates {
		overlap := core.OverlapRatio(query, candidateText(c))
		blended[i] = overlapWeight*overlap + fusedWeight*c.FusedScore
	}

	return sortByBlend(candidates, blended)
}

// sortByBlend stable-sorts candidates descending by their blended scores.
// The pair slice keeps each candidate attached to its score while sorting;
// sorting the candidate slice against a fixed score slice would read stale
// scores after the first swap.
func sortByBlend(candidates []*core.Candidate, blended []float64) []*core.Candidate {
	type scored struct {
		candidate *core.Candidate
		blend     float64
	}

	pairs := make([]scored, len(candidates))
	for i, c := range candidates {
		pairs[i] = scored{candidate: c, blend: blended[i]}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].blend > pairs[j].blend
	})

	for i, p := range pairs {
		candidates[i] = p.candidate
	}
	return candidates
}

func candidateText(c *core.Candidate) string {
	parts := make([]string, 0, 3)
	if c.HotelName != "" {
		parts = append(parts, c.HotelName)
	}
	if c.Snippet != "" {
		parts = append(parts, c.Snippet)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, strings.Join(c.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// CrossReranker scores each candidate against the query with a relevance
// model. Any scorer failure falls back to the lexical strategy silently, so
// retrieval quality degrades instead of the turn failing.
type CrossReranker struct {
	scorer   ai.RelevanceScorer
	fallback *LexicalReranker
	logger   *slog.Logger
}

// CrossOption configures a CrossReranker.
type CrossOption func(*CrossReranker)

// WithCrossLogger sets a custom logger.
// Default is slog.Default().
func WithCrossLogger(logger *slog.Logger) CrossOption {
	return func(r *CrossReranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewCrossReranker creates a relevance-model rerank strategy.
func NewCrossReranker(scorer ai.RelevanceScorer, opts ...CrossOption) *CrossReranker {
	r := &CrossReranker{
		scorer:   scorer,
		fallback: NewLexicalReranker(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rerank implements Reranker.
func (r *CrossReranker) Rerank(ctx context.Context, query string, candidates []*core.Candidate) []*core.Candidate {
	if len(candidates) == 0 || strings.TrimSpace(query) == "" {
		return candidates
	}
	if r.scorer == nil {
		return r.fallback.Rerank(ctx, query, candidates)
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = candidateText(c)
	}

	scores, err := r.scorer.ScoreRelevance(ctx, query, passages)
	if err != nil || len(scores) != len(candidates) {
		r.logger.Warn("relevance scoring failed, falling back to lexical rerank", "err", err)
		return r.fallback.Rerank(ctx, query, candidates)
	}

	blended := make([]float64, len(candidates))
	for i, c := range candidates {
		blended[i] = overlapWeight*scores[i] + fusedWeight*c.FusedScore
	}

	return sortByBlend(candidates, blended)
}
