package domain

// PlayerView is a player as one viewer may see it. Hand is only filled for the viewer's own seat.
type PlayerView struct {
	ID         string `json:"id"`
	Seat       int    `json:"seat"`
	HandCount  int    `json:"hand_count"`
	Hand       []Tile `json:"hand,omitempty"`
	Score      int    `json:"score"`
	RoundScore int    `json:"round_score"`
	IsBot      bool   `json:"is_bot"`
	Resigned   bool   `json:"resigned"`
}

// Snapshot is the wire view of a session.
type Snapshot struct {
	Variant       VariantKind  `json:"variant"`
	Players       []PlayerView `json:"players"`
	Board         Board        `json:"board"`
	OpenEnds      []EndRef     `json:"open_ends,omitempty"`
	BoneyardCount int          `json:"boneyard_count"`
	Turn          int          `json:"turn"`
	Phase         Phase        `json:"phase"`
	Round         int          `json:"round"`
	HistoryLength int          `json:"history_length"`
	Terminal      *Terminal    `json:"terminal,omitempty"`
}

// NewSnapshot builds the view of s for viewer. Pass -1 for a spectator view with no hand revealed.
func NewSnapshot(s *State, viewer int) Snapshot {
	snap := Snapshot{
		Variant:       s.Variant,
		Players:       make([]PlayerView, len(s.Players)),
		Board:         s.Board,
		BoneyardCount: len(s.Boneyard),
		Turn:          s.Turn,
		Phase:         s.Phase,
		Round:         s.Round,
		HistoryLength: len(s.History),
		Terminal:      s.Terminal,
	}
	for i, p := range s.Players {
		view := PlayerView{
			ID:         p.ID,
			Seat:       i,
			HandCount:  len(p.Hand),
			Score:      s.MatchScores[i],
			RoundScore: s.RoundScores[i],
			IsBot:      p.IsBot,
			Resigned:   p.Resigned,
		}
		if i == viewer {
			view.Hand = append([]Tile(nil), p.Hand...)
		}
		snap.Players[i] = view
	}
	if viewer >= 0 && viewer < len(s.Players) {
		snap.OpenEnds = s.Board.OpenEnds(viewer)
	}
	return snap
}
