package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	_, sessionRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("absent session loads as nil without error", func(t *testing.T) {
		mem, err := sessionRepo.LoadMemory(ctx, "never-seen")
		require.NoError(t, err)
		assert.Nil(t, mem)
	})

	t.Run("save and load round-trip", func(t *testing.T) {
		mem := core.NewSessionMemory()
		mem.AppendSearch(core.TravelQuery{
			Destination: "Paris",
			CheckIn:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:    time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
			PartySize:   2,
			Atmosphere:  []string{"quiet"},
		})
		mem.RejectedIds[core.ID(42)] = true
		mem.LearnPreference("quiet", 0.8)
		mem.AddMessage(core.RoleUser, "find me a quiet hotel")

		require.NoError(t, sessionRepo.SaveMemory(ctx, "sess-1", mem))

		loaded, err := sessionRepo.LoadMemory(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		require.Len(t, loaded.SearchHistory, 1)
		assert.Equal(t, "Paris", loaded.SearchHistory[0].Destination)
		assert.True(t, loaded.RejectedIds[core.ID(42)])
		assert.InDelta(t, 0.8, loaded.LearnedPreferences["quiet"], 1e-9)
		require.Len(t, loaded.ChatHistory, 1)
		assert.Equal(t, core.RoleUser, loaded.ChatHistory[0].Role)
	})

	t.Run("save overwrites previous state", func(t *testing.T) {
		mem := core.NewSessionMemory()
		mem.LearnPreference("parking", 0.5)
		require.NoError(t, sessionRepo.SaveMemory(ctx, "sess-1", mem))

		loaded, err := sessionRepo.LoadMemory(ctx, "sess-1")
		require.NoError(t, err)
		assert.Empty(t, loaded.SearchHistory)
		assert.InDelta(t, 0.5, loaded.LearnedPreferences["parking"], 1e-9)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, sessionRepo.DeleteSession(ctx, "sess-1"))
		mem, err := sessionRepo.LoadMemory(ctx, "sess-1")
		require.NoError(t, err)
		assert.Nil(t, mem)

		require.NoError(t, sessionRepo.DeleteSession(ctx, "sess-1"))
	})

	t.Run("empty session id rejected", func(t *testing.T) {
		_, err := sessionRepo.LoadMemory(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		err = sessionRepo.SaveMemory(ctx, "", core.NewSessionMemory())
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}
