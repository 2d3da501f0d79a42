package ports

import (
	"context"
	"errors"

	"domino/internal/domain"
)

// ErrNoHistory is returned when a store has nothing recorded for a session.
var ErrNoHistory = errors.New("no history for session")

// HistoryStore keeps what is needed to rebuild a session after a restart:
// the state a round was dealt with and the moves applied since.
type HistoryStore interface {
	// SaveRound records the freshly dealt state of a round and clears earlier moves.
	SaveRound(ctx context.Context, sessionID string, initial *domain.State) error

	// Append adds one applied move to the session log.
	Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error

	// Load returns the recorded round state and its moves in order.
	// Returns ErrNoHistory when the session is unknown.
	Load(ctx context.Context, sessionID string) (*domain.State, []domain.HistoryEntry, error)

	// Delete drops everything stored for the session.
	Delete(ctx context.Context, sessionID string) error
}
