package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (storage.SessionRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &SessionRepository{backend: backend}, nil
}

// Close is a no-op; the underlying backend owns the database handle.
func (r *SessionRepository) Close() error {
	return nil
}

// LoadMemory retrieves the memory for a session.
// Returns (nil, nil) when the session has no stored memory.
func (r *SessionRepository) LoadMemory(ctx context.Context, sessionID string) (*core.SessionMemory, error) {
	if sessionID == "" {
		return nil, storage.ErrInvalidQuery
	}

	var memory *core.SessionMemory
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(sessionID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			memory, err = storage.UnmarshalSessionMemory(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return memory, nil
}

// SaveMemory persists the memory for a session, overwriting any previous snapshot.
func (r *SessionRepository) SaveMemory(ctx context.Context, sessionID string, memory *core.SessionMemory) error {
	if sessionID == "" || memory == nil {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSessionKey(sessionID), storage.MarshalSessionMemory(memory)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteSession removes a session's stored memory. Absent sessions are a no-op.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(sessionID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
