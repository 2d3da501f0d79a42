package app

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"

	"domino/internal/domain"
)

// MoveResult is what a submitter learns about its move.
type MoveResult struct {
	Accepted bool                `json:"accepted"`
	Reason   domain.Reason       `json:"reason,omitempty"`
	Session  domain.Snapshot     `json:"session"`
	Deltas   []domain.ScoreDelta `json:"score_delta,omitempty"`
	Terminal *domain.Terminal    `json:"terminal,omitempty"`
}

// Session is the authoritative owner of one match. Writes are serialized by a
// try-lock so a second concurrent writer is rejected instead of queued; readers
// load the latest published state without locking.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	state     atomic.Pointer[domain.State]
	resolving atomic.Bool
}

func newSession(id string, initial *domain.State, seed uint64, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		rng:       rand.New(rand.NewSource(seed)),
	}
	s.state.Store(initial)
	return s
}

// State returns the latest published state. Callers must treat it as read-only.
func (s *Session) State() *domain.State {
	return s.state.Load()
}

// Phase reports Resolving while a move is being applied.
func (s *Session) Phase() domain.Phase {
	if s.resolving.Load() {
		return domain.PhaseResolving
	}
	return s.State().Phase
}

// Snapshot returns the view of the session for the player with userID. Unknown ids get a spectator view.
func (s *Session) Snapshot(userID string) domain.Snapshot {
	st := s.State()
	seat, ok := st.SeatOf(userID)
	if !ok {
		seat = -1
	}
	return domain.NewSnapshot(st, seat)
}

// History returns the moves applied in the current round.
func (s *Session) History() []domain.HistoryEntry {
	return append([]domain.HistoryEntry(nil), s.State().History...)
}

// Submit validates and applies m and returns the state it published. A rejected
// move leaves the session untouched and is reported both in the result and as
// the returned error.
func (s *Session) Submit(m domain.Move) (MoveResult, *domain.State, error) {
	if !s.mu.TryLock() {
		err := domain.NewRuleError(domain.ReasonInvalidPhase, "session %s is resolving another move", s.ID)
		return s.rejected(m.Seat, err), nil, err
	}
	defer s.mu.Unlock()

	s.resolving.Store(true)
	defer s.resolving.Store(false)

	cur := s.State()
	next, deltas, err := domain.Apply(cur, m)
	if err != nil {
		return s.rejected(m.Seat, err), nil, err
	}
	s.state.Store(next)

	return MoveResult{
		Accepted: true,
		Session:  domain.NewSnapshot(next, m.Seat),
		Deltas:   deltas,
		Terminal: next.Terminal,
	}, next, nil
}

// NextRound deals the following round once the current one is over.
func (s *Session) NextRound() (*domain.State, error) {
	if !s.mu.TryLock() {
		return nil, domain.NewRuleError(domain.ReasonInvalidPhase, "session %s is resolving another move", s.ID)
	}
	defer s.mu.Unlock()

	next, err := s.State().NextRound(s.rng)
	if err != nil {
		return nil, err
	}
	s.state.Store(next)
	return next, nil
}

func (s *Session) rejected(seat int, err error) MoveResult {
	st := s.State()
	if seat < 0 || seat >= len(st.Players) {
		seat = -1
	}
	return MoveResult{
		Accepted: false,
		Reason:   domain.ReasonOf(err),
		Session:  domain.NewSnapshot(st, seat),
	}
}
