package app

import "domino/internal/domain"

// EventKind identifies emitted session events for dispatch.
type EventKind string

const (
	EventMatchStarted EventKind = "match_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventMoveApplied  EventKind = "move_applied"
	EventScoreChanged EventKind = "score_changed"
	EventRoundOver    EventKind = "round_over"
	EventMatchOver    EventKind = "match_over"
)

// Event is a session event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type MatchStartedPayload struct {
	SessionID string             `json:"session_id"`
	Variant   domain.VariantKind `json:"variant"`
	Round     int                `json:"round"`
	Snapshot  domain.Snapshot    `json:"snapshot"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Round  int           `json:"round"`
	Hand   []domain.Tile `json:"hand"`
}

type MoveAppliedPayload struct {
	Seq      int             `json:"seq"`
	Move     domain.Move     `json:"move"`
	UserID   string          `json:"user_id"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type ScoreChangedPayload struct {
	Deltas      []domain.ScoreDelta `json:"deltas"`
	RoundScores []int               `json:"round_scores"`
	MatchScores []int               `json:"match_scores"`
}

type RoundOverPayload struct {
	Round       int             `json:"round"`
	Terminal    domain.Terminal `json:"terminal"`
	MatchScores []int           `json:"match_scores"`
}

type MatchOverPayload struct {
	WinnerSeat  int    `json:"winner_seat"`
	WinnerID    string `json:"winner_id,omitempty"`
	MatchScores []int  `json:"match_scores"`
}

// dealEvents announces a freshly dealt round: a public start event and one private hand per player.
func dealEvents(sessionID string, s *domain.State) []Event {
	events := make([]Event, 0, len(s.Players)+1)
	events = append(events, Event{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			SessionID: sessionID,
			Variant:   s.Variant,
			Round:     s.Round,
			Snapshot:  domain.NewSnapshot(s, -1),
		},
	})
	for _, p := range s.Players {
		if p.Resigned {
			continue
		}
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: p.ID, Round: s.Round, Hand: append([]domain.Tile(nil), p.Hand...)},
			Recipients: []string{p.ID},
		})
	}
	return events
}

// moveEvents describes the move recorded last in next and what it settled.
func moveEvents(next *domain.State, deltas []domain.ScoreDelta) []Event {
	last := next.History[len(next.History)-1]
	events := []Event{{
		Kind: EventMoveApplied,
		Payload: MoveAppliedPayload{
			Seq:      last.Seq,
			Move:     last.Move,
			UserID:   next.Players[last.Move.Seat].ID,
			Snapshot: domain.NewSnapshot(next, -1),
		},
	}}

	if len(deltas) > 0 {
		events = append(events, Event{
			Kind: EventScoreChanged,
			Payload: ScoreChangedPayload{
				Deltas:      deltas,
				RoundScores: append([]int(nil), next.RoundScores...),
				MatchScores: append([]int(nil), next.MatchScores...),
			},
		})
	}

	if next.Terminal != nil {
		events = append(events, Event{
			Kind: EventRoundOver,
			Payload: RoundOverPayload{
				Round:       next.Round,
				Terminal:    *next.Terminal,
				MatchScores: append([]int(nil), next.MatchScores...),
			},
		})
	}

	if next.Phase == domain.PhaseMatchOver {
		winner := domain.MatchLeader(next)
		payload := MatchOverPayload{WinnerSeat: winner, MatchScores: append([]int(nil), next.MatchScores...)}
		if winner >= 0 {
			payload.WinnerID = next.Players[winner].ID
		}
		events = append(events, Event{Kind: EventMatchOver, Payload: payload})
	}
	return events
}
