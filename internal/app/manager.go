package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"domino/internal/domain"
	"domino/internal/ports"
)

// ErrSessionNotFound is returned for ids the manager does not hold and cannot restore.
var ErrSessionNotFound = errors.New("session not found")

// Manager indexes live sessions by id and rebuilds them from the history store.
type Manager struct {
	sessions sync.Map // id -> *Session
	store    ports.HistoryStore
}

// NewManager returns a manager. store may be nil, in which case Restore always misses.
func NewManager(store ports.HistoryStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) add(s *Session) {
	m.sessions.Store(s.ID, s)
}

// Get returns the live session with id.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return v.(*Session), nil
}

// Remove forgets a session. Stored history is left alone.
func (m *Manager) Remove(id string) {
	m.sessions.Delete(id)
}

// Len counts live sessions.
func (m *Manager) Len() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Restore returns the live session with id, rebuilding it by replaying the stored
// round when it is not in memory.
func (m *Manager) Restore(ctx context.Context, id string, seed uint64, now time.Time) (*Session, error) {
	if s, err := m.Get(id); err == nil {
		return s, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	initial, entries, err := m.store.Load(ctx, id)
	if errors.Is(err, ports.ErrNoHistory) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}

	st, err := domain.Replay(initial, entries)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}

	actual, _ := m.sessions.LoadOrStore(id, newSession(id, st, seed, now))
	return actual.(*Session), nil
}
