package internal

import "domino/internal/domain"

// GamePhase describes the current strategic stage of a round.
type GamePhase int

const (
	// PhaseOpening indicates the board holds at most the first tile.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no endgame trigger has fired yet.
	PhaseMid
	// PhaseEnd indicates few tiles remain in hands or the boneyard is nearly drained.
	PhaseEnd
)

const (
	// EndgameHandTiles is the total of tiles across all active hands below which the endgame starts.
	EndgameHandTiles = 10
	// EndgameBoneyard is the boneyard size below which a drawing variant enters the endgame.
	EndgameBoneyard = 5
)

// DetectPhase infers the phase from hand sizes, board size and boneyard.
func DetectPhase(s *domain.State) GamePhase {
	if s == nil || len(s.Players) == 0 {
		return PhaseMid
	}

	inHands := 0
	for _, seat := range s.ActiveSeats() {
		inHands += len(s.Players[seat].Hand)
	}
	if inHands < EndgameHandTiles {
		return PhaseEnd
	}
	if s.Rules.AllowDraw && len(s.Boneyard) < EndgameBoneyard {
		return PhaseEnd
	}
	if s.Board.Empty() || (s.Variant != domain.MexicanTrain && s.Board.TileCount() <= 1) {
		return PhaseOpening
	}
	return PhaseMid
}
