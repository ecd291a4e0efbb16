package badger

import (
	"context"
	"testing"

	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDoc(name, location, text string, rating float64) *core.ReviewDocument {
	return &core.ReviewDocument{
		HotelName:  name,
		Location:   location,
		Rating:     rating,
		ReviewText: text,
	}
}

func TestDocumentRepositoryCRUD(t *testing.T) {
	docRepo, sessionRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sessionRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	t.Run("add assigns content-based ids", func(t *testing.T) {
		doc := newTestDoc("Hotel A", "Paris", "quiet room near the Louvre", 4.2)
		added, err := docRepo.AddDocuments(ctx, doc)
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.NotZero(t, added[0].Id)
		assert.False(t, added[0].InsertedAt.IsZero())

		got, err := docRepo.GetDocument(ctx, added[0].Id)
		require.NoError(t, err)
		assert.Equal(t, "Hotel A", got.HotelName)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := docRepo.GetDocument(ctx, core.ID(12345))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get many skips missing", func(t *testing.T) {
		doc := newTestDoc("Hotel B", "Paris", "lovely view of the river", 4.0)
		added, err := docRepo.AddDocuments(ctx, doc)
		require.NoError(t, err)

		docs, err := docRepo.GetDocuments(ctx, added[0].Id, core.ID(99999))
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("delete", func(t *testing.T) {
		doc := newTestDoc("Hotel C", "Rome", "close to the forum", 3.9)
		added, err := docRepo.AddDocuments(ctx, doc)
		require.NoError(t, err)

		require.NoError(t, docRepo.DeleteDocuments(ctx, added[0].Id))
		_, err = docRepo.GetDocument(ctx, added[0].Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid document rejected", func(t *testing.T) {
		_, err := docRepo.AddDocuments(ctx, &core.ReviewDocument{Location: "Paris"})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestLexicalCandidates(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = docRepo.AddDocuments(ctx,
		newTestDoc("Riverside Inn", "Paris", "quiet quiet quiet hotel with lovely garden", 4.0),
		newTestDoc("Central Plaza", "Paris", "busy hotel near shopping, quiet at night", 4.5),
		newTestDoc("Roma Suites", "Rome", "quiet hotel near the forum", 4.8),
	)
	require.NoError(t, err)

	t.Run("scores by term frequency", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, []string{"quiet"}, core.SearchFilters{Location: "Paris"}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "Riverside Inn", hits[0].Document.HotelName)
		assert.Greater(t, hits[0].Score, hits[1].Score)
	})

	t.Run("hard location filter excludes other cities", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, []string{"quiet"}, core.SearchFilters{Location: "Rome"}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Roma Suites", hits[0].Document.HotelName)
	})

	t.Run("min rating filter", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, []string{"quiet"}, core.SearchFilters{Location: "Paris", MinRating: 4.3}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Central Plaza", hits[0].Document.HotelName)
	})

	t.Run("require tags filter", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, []string{"hotel"}, core.SearchFilters{
			Location:    "Paris",
			RequireTags: []string{"garden"},
		}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Riverside Inn", hits[0].Document.HotelName)
	})

	t.Run("no terms yields empty", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, nil, core.SearchFilters{}, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		hits, err := docRepo.LexicalCandidates(ctx, []string{"nonexistentterm"}, core.SearchFilters{}, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestFindSimilar(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	near := newTestDoc("Near Hotel", "Paris", "calm and cozy", 4.0)
	near.Vector = []float32{1, 0, 0}
	far := newTestDoc("Far Hotel", "Paris", "loud and busy", 4.0)
	far.Vector = []float32{0.1, 0.9, 0}
	noVec := newTestDoc("Unembedded Hotel", "Paris", "no vector yet", 4.0)

	_, err = docRepo.AddDocuments(ctx, near, far, noVec)
	require.NoError(t, err)

	hits, err := docRepo.FindSimilar(ctx, []float32{1, 0, 0}, core.SearchFilters{Location: "Paris"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Near Hotel", hits[0].Document.HotelName)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestMaxPriceFilter(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	cheap := newTestDoc("Budget Stay", "Paris", "simple quiet hotel", 3.8)
	cheap.PriceNight = 80
	pricey := newTestDoc("Luxe Palace", "Paris", "grand quiet hotel", 4.9)
	pricey.PriceNight = 400
	unknown := newTestDoc("Mystery Inn", "Paris", "quiet hotel, unlisted prices", 4.1)

	_, err = docRepo.AddDocuments(ctx, cheap, pricey, unknown)
	require.NoError(t, err)

	hits, err := docRepo.LexicalCandidates(ctx, []string{"quiet"}, core.SearchFilters{Location: "Paris", MaxPrice: 100}, 10)
	require.NoError(t, err)

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.Document.HotelName)
	}
	// Unknown-price documents pass the filter; only priced-out documents are dropped.
	assert.ElementsMatch(t, []string{"Budget Stay", "Mystery Inn"}, names)
}

func TestCountDocuments(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	count, err := docRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = docRepo.AddDocuments(ctx,
		newTestDoc("Hotel A", "Paris", "first review", 4.0),
		newTestDoc("Hotel B", "Paris", "second review", 4.0),
	)
	require.NoError(t, err)

	count, err = docRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
