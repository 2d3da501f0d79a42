package domain

// TerminalKind names how a round ended.
type TerminalKind string

const (
	TerminalDomination TerminalKind = "domination"
	TerminalBlocked    TerminalKind = "blocked"
	TerminalForfeit    TerminalKind = "forfeit"
)

// Terminal describes a finished round. Winner is -1 when nobody won outright.
type Terminal struct {
	Kind   TerminalKind `json:"kind"`
	Winner int          `json:"winner"`
}

// CheckEnd returns the terminal condition reached by s, or nil while play continues.
func CheckEnd(s *State) *Terminal {
	active := s.ActiveSeats()
	for _, seat := range active {
		if len(s.Players[seat].Hand) == 0 {
			return &Terminal{Kind: TerminalDomination, Winner: seat}
		}
	}

	if len(s.Players) > 1 && len(active) <= 1 {
		winner := -1
		if len(active) == 1 {
			winner = active[0]
		}
		return &Terminal{Kind: TerminalForfeit, Winner: winner}
	}

	if boneyardOpen(s) {
		return nil
	}
	if s.PassStreak >= len(active) || (!s.Board.HasPrivate() && nobodyCanPlace(s, active)) {
		winner := -1
		if low := lowestHands(s); len(low) == 1 {
			winner = low[0]
		}
		return &Terminal{Kind: TerminalBlocked, Winner: winner}
	}
	return nil
}

// nobodyCanPlace is only conclusive while every train is public, since a pass
// can open a private train to the other seats.
func nobodyCanPlace(s *State, active []int) bool {
	if s.Board.Empty() {
		return false
	}
	for _, seat := range active {
		if len(LegalPlacements(s, seat)) > 0 {
			return false
		}
	}
	return true
}

// MatchComplete reports whether a finished round also finishes the match.
func MatchComplete(s *State) bool {
	if len(s.ActiveSeats()) <= 1 {
		return true
	}
	r := s.Rules
	if r.Rounds == 0 && r.TargetScore == 0 {
		return true
	}
	if r.Rounds > 0 && s.Round+1 >= r.Rounds {
		return true
	}
	if r.TargetScore > 0 {
		for _, score := range s.MatchScores {
			if score >= r.TargetScore {
				return true
			}
		}
	}
	return false
}
