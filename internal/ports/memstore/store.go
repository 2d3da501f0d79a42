// Package memstore keeps session history in process memory.
package memstore

import (
	"context"
	"sync"

	"domino/internal/domain"
	"domino/internal/ports"
)

type record struct {
	initial *domain.State
	entries []domain.HistoryEntry
}

// Store is an in-memory ports.HistoryStore.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record
}

// New returns an empty store.
func New() *Store {
	return &Store{sessions: make(map[string]*record)}
}

func (s *Store) SaveRound(_ context.Context, sessionID string, initial *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &record{initial: initial}
	return nil
}

func (s *Store) Append(_ context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return ports.ErrNoHistory
	}
	rec.entries = append(rec.entries, entry)
	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.State, []domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, ports.ErrNoHistory
	}
	return rec.initial, append([]domain.HistoryEntry(nil), rec.entries...), nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
