package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

const defaultIdleTTL = 30 * time.Minute

// liveSession is one cached in-flight conversation. Its mutex serializes
// concurrent turns for the same session id; interleaved turns would corrupt
// the memory's history ordering.
type liveSession struct {
	mu    sync.Mutex
	state *core.ConversationState
}

// Manager owns session lifecycle: load-through from the session repository,
// a bounded idle-expiring cache of live conversations, per-session turn
// serialization, and persistence after every turn.
type Manager struct {
	orchestrator *Orchestrator
	sessions     storage.SessionRepository
	live         *cache.Cache
	acquireMu    sync.Mutex
	idleTTL      time.Duration
	logger       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager) error

// WithIdleTTL sets how long an idle live session stays cached before its
// next turn has to reload memory from storage.
// Default is 30 minutes.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) error {
		if ttl > 0 {
			m.idleTTL = ttl
		}
		return nil
	}
}

// WithManagerLogger sets a custom logger.
// Default is slog.Default().
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a session manager.
func NewManager(orchestrator *Orchestrator, sessions storage.SessionRepository, opts ...ManagerOption) (*Manager, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}

	m := &Manager{
		orchestrator: orchestrator,
		sessions:     sessions,
		idleTTL:      defaultIdleTTL,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	m.live = cache.New(m.idleTTL, m.idleTTL)
	return m, nil
}

// TurnResult is what one processed message returns to the transport layer.
type TurnResult struct {
	SessionId     string
	Response      string
	Outcome       core.TurnOutcome
	Relaxed       bool
	ExecutionPath []string
}

// HandleMessage runs one conversation turn. An empty session id starts a new
// session. Turns for the same session are serialized; memory is persisted
// after every turn, including failed ones, so nothing learned is lost.
func (m *Manager) HandleMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	state, turnErr := m.orchestrator.Advance(ctx, session.state, message)
	session.state = state

	if saveErr := m.sessions.SaveMemory(ctx, sessionID, state.Memory); saveErr != nil {
		m.logger.Warn("failed to persist session memory", "session", sessionID, "err", saveErr)
	}

	if state.Outcome == core.OutcomeDone {
		m.live.Delete(sessionID)
	} else {
		// Refresh the idle clock.
		m.live.Set(sessionID, session, cache.DefaultExpiration)
	}

	result := &TurnResult{
		SessionId:     sessionID,
		Response:      state.Response,
		Outcome:       state.Outcome,
		Relaxed:       state.SearchRelaxed,
		ExecutionPath: append([]string(nil), state.ExecutionPath...),
	}
	return result, turnErr
}

// acquire returns the live session for the id, loading durable memory on a
// cache miss. Creation is serialized so two rushing first messages share one
// session instead of racing.
func (m *Manager) acquire(ctx context.Context, sessionID string) (*liveSession, error) {
	m.acquireMu.Lock()
	defer m.acquireMu.Unlock()

	if cached, ok := m.live.Get(sessionID); ok {
		if session, ok := cached.(*liveSession); ok {
			return session, nil
		}
	}

	memory, err := m.sessions.LoadMemory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if memory == nil {
		memory = core.NewSessionMemory()
	}

	session := &liveSession{
		state: &core.ConversationState{
			SessionId: sessionID,
			Memory:    memory,
		},
	}
	m.live.Set(sessionID, session, cache.DefaultExpiration)
	return session, nil
}

// EndSession persists and forgets a live session.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	if cached, ok := m.live.Get(sessionID); ok {
		if session, ok := cached.(*liveSession); ok {
			session.mu.Lock()
			defer session.mu.Unlock()
			if err := m.sessions.SaveMemory(ctx, sessionID, session.state.Memory); err != nil {
				return err
			}
		}
	}
	m.live.Delete(sessionID)
	return nil
}

// Close persists every live session. The manager should not be used after
// calling Close.
func (m *Manager) Close(ctx context.Context) error {
	var firstErr error
	for sessionID, item := range m.live.Items() {
		session, ok := item.Object.(*liveSession)
		if !ok {
			continue
		}
		session.mu.Lock()
		err := m.sessions.SaveMemory(ctx, sessionID, session.state.Memory)
		session.mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.live.Flush()
	return firstErr
}
