package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

// defaultBatchSize is how many documents one embedding call covers.
const defaultBatchSize = 32

// Pipeline orchestrates indexing of review documents.
// It manages concurrent embedding of stored documents.
type Pipeline struct {
	documents storage.DocumentRepository
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(documents storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents: documents,
		embedder:  embedder,
		pool:      pool,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest stores the documents and schedules their embeddings asynchronously.
// Storage errors fail the call; embedding errors are logged and leave the
// affected batch lexical-only.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.ReviewDocument) error {
	added, err := p.documents.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	for start := 0; start < len(added); start += p.batchSize {
		end := start + p.batchSize
		if end > len(added) {
			end = len(added)
		}
		batch := added[start:end]

		p.wg.Add(1)
		if err := p.pool.Submit(func() {
			defer p.wg.Done()
			p.embedBatch(context.Background(), batch)
		}); err != nil {
			p.wg.Done()
			p.logger.Error("error submitting embedding batch", "err", err)
		}
	}

	return nil
}

// embedBatch embeds one batch of stored documents and writes the vectors back.
func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.ReviewDocument) {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = embeddingText(doc)
	}

	p.logger.Debug("generating embeddings for documents", "documents", len(texts))
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings, batch stays lexical-only", "documents", len(batch), "err", err)
		return
	}
	if len(vectors) != len(batch) {
		p.logger.Error("embedding result mismatch", "expected", len(batch), "received", len(vectors))
		return
	}

	for i := range vectors {
		batch[i].Vector = vectors[i]
	}

	if _, err := p.documents.AddDocuments(ctx, batch...); err != nil {
		p.logger.Error("error storing embedded documents", "err", err)
	}
}

// Wait blocks until all scheduled embedding work has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}

// embeddingText is what a document's vector represents: its title and review
// body, plus tags so short reviews still carry their preference signal.
func embeddingText(doc *core.ReviewDocument) string {
	parts := make([]string, 0, 3)
	if doc.ReviewTitle != "" {
		parts = append(parts, doc.ReviewTitle)
	}
	if doc.ReviewText != "" {
		parts = append(parts, doc.ReviewText)
	}
	if len(doc.Tags) > 0 {
		parts = append(parts, strings.Join(doc.Tags, " "))
	}
	return strings.Join(parts, " ")
}
