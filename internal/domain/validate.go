package domain

// IsLegal reports whether m may be applied to s. It returns nil or a *RuleError
// and never modifies s, so it is safe to call speculatively from any goroutine.
func IsLegal(s *State, m Move) error {
	if s.Phase != PhaseAwaitingMove {
		return reject(ReasonInvalidPhase, "moves are not accepted during %s", s.Phase)
	}
	if m.Seat < 0 || m.Seat >= len(s.Players) {
		return reject(ReasonUnknownPlayer, "seat %d", m.Seat)
	}
	if s.Players[m.Seat].Resigned {
		return reject(ReasonNotYourTurn, "seat %d resigned", m.Seat)
	}

	if m.Kind == MoveResign {
		return nil
	}
	if m.Seat != s.Turn {
		return reject(ReasonNotYourTurn, "turn belongs to seat %d", s.Turn)
	}

	switch m.Kind {
	case MoveTimeout:
		return nil
	case MovePlace:
		return checkPlacement(s, m)
	case MoveDraw:
		return checkDraw(s, m.Seat)
	case MovePass:
		return checkPass(s, m.Seat)
	default:
		return reject(ReasonUnsupportedMove, "%q", m.Kind)
	}
}

func checkPlacement(s *State, m Move) error {
	tile, ok := FindTile(s.Players[m.Seat].Hand, m.TileID)
	if !ok {
		return reject(ReasonTileNotInHand, "tile %d", m.TileID)
	}

	if s.Board.Empty() {
		if !m.End.IsOpening() {
			return reject(ReasonEndNotOpen, "the board is empty, %s must open it", tile)
		}
		return checkOpening(s, tile)
	}
	if m.End.IsOpening() {
		return reject(ReasonEndNotOpen, "the board is already open")
	}

	if err := s.Board.Accessible(m.Seat, m.End.Branch); err != nil {
		return err
	}
	br := s.Board.Branches[m.End.Branch]
	if br.Tail() != m.End.Value {
		return reject(ReasonEndNotOpen, "branch %d exposes %d, not %d", m.End.Branch, br.Tail(), m.End.Value)
	}
	if !tile.Has(m.End.Value) {
		return reject(ReasonPipMismatch, "%s does not match %d", tile, m.End.Value)
	}
	return nil
}

// checkOpening applies the opening rule. A rule that no hand can satisfy falls back to any tile.
func checkOpening(s *State, tile Tile) error {
	switch s.Rules.Opening {
	case OpenAnyDouble:
		if !tile.IsDouble() {
			if _, _, ok := s.highestDoubleHolder(); ok {
				return reject(ReasonIllegalBranch, "the round must open with a double")
			}
		}
	case OpenHighestDouble:
		if _, best, ok := s.highestDoubleHolder(); ok && best.ID != tile.ID {
			return reject(ReasonIllegalBranch, "the round must open with %s", best)
		}
	}
	return nil
}

func checkDraw(s *State, seat int) error {
	if len(LegalPlacements(s, seat)) > 0 {
		return reject(ReasonDrawNotAllowed, "a placement is available")
	}
	if !canDraw(s) {
		return reject(ReasonDrawNotAllowed, "boneyard has %d tiles, %d drawn this turn", len(s.Boneyard), s.DrawsThisTurn)
	}
	return nil
}

func checkPass(s *State, seat int) error {
	if len(LegalPlacements(s, seat)) > 0 {
		return reject(ReasonPassNotAllowed, "a placement is available")
	}
	if canDraw(s) {
		return reject(ReasonPassNotAllowed, "draw from the boneyard first")
	}
	return nil
}

// canDraw reports whether the player holding the turn may still draw.
func canDraw(s *State) bool {
	if !boneyardOpen(s) {
		return false
	}
	return s.Rules.DrawLimit == 0 || s.DrawsThisTurn < s.Rules.DrawLimit
}

func boneyardOpen(s *State) bool {
	return s.Rules.AllowDraw && len(s.Boneyard) > 0
}

// LegalPlacements enumerates every legal placement for seat, in hand order
// and then open-end order. It ignores whose turn it is.
func LegalPlacements(s *State, seat int) []Move {
	if seat < 0 || seat >= len(s.Players) {
		return nil
	}
	hand := s.Players[seat].Hand
	var moves []Move

	if s.Board.Empty() {
		for _, t := range hand {
			if checkOpening(s, t) == nil {
				moves = append(moves, PlaceMove(seat, t.ID, OpeningEnd))
			}
		}
		return moves
	}

	ends := s.Board.OpenEnds(seat)
	for _, t := range hand {
		for _, end := range ends {
			if t.Has(end.Value) {
				moves = append(moves, PlaceMove(seat, t.ID, end))
			}
		}
	}
	return moves
}

// LegalMoves returns the placements for seat, or the single fallback move
// (draw, then pass) when nothing can be placed. Resign is always available and not listed.
func LegalMoves(s *State, seat int) []Move {
	if moves := LegalPlacements(s, seat); len(moves) > 0 {
		return moves
	}
	if canDraw(s) {
		return []Move{DrawMove(seat)}
	}
	return []Move{PassMove(seat)}
}
