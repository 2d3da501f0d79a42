package domain

import "fmt"

// Apply validates m against s and returns the resulting state with the score
// deltas the move produced, including round settlement when the move ends the
// round. s is never modified; on error it is returned unchanged.
func Apply(s *State, m Move) (*State, []ScoreDelta, error) {
	if err := IsLegal(s, m); err != nil {
		return s, nil, err
	}
	v, err := VariantFor(s.Variant)
	if err != nil {
		return s, nil, err
	}

	next := s.clone()
	var deltas []ScoreDelta
	switch m.Kind {
	case MovePlace:
		if deltas, err = next.place(v, m); err != nil {
			return s, nil, err
		}
	case MoveDraw:
		next.draw(m.Seat)
	case MovePass:
		next.pass(m.Seat, true)
	case MoveTimeout:
		next.pass(m.Seat, len(LegalPlacements(s, m.Seat)) == 0 && !canDraw(s))
	case MoveResign:
		next.resign(m.Seat)
	}
	next.History = append(next.History, HistoryEntry{Seq: len(next.History) + 1, Move: m})

	if t := CheckEnd(next); t != nil {
		deltas = append(deltas, next.finishRound(v, *t)...)
	}
	return next, deltas, nil
}

func (s *State) place(v Variant, m Move) ([]ScoreDelta, error) {
	p := &s.Players[m.Seat]
	tile, _ := FindTile(p.Hand, m.TileID)
	p.Hand, _ = RemoveTile(p.Hand, m.TileID)

	if m.End.IsOpening() {
		s.Board = v.open(s.Rules, tile)
	} else {
		board, err := s.Board.Place(tile, m.End)
		if err != nil {
			return nil, err
		}
		if board.Branches[m.End.Branch].Owner == m.Seat {
			board = board.WithPublic(m.End.Branch, false)
		}
		s.Board = v.grow(s.Rules, board, m.End.Branch)
	}

	p.ConsecutivePasses = 0
	s.PassStreak = 0

	deltas := v.ScorePlacement(s, m.Seat)
	applyDeltas(s, deltas)

	extra := s.Rules.DoubleExtraTurn && tile.IsDouble() && !m.End.IsOpening()
	if extra {
		s.DrawsThisTurn = 0
	} else {
		s.advanceTurn()
	}
	return deltas, nil
}

// draw moves the front boneyard tile into the hand. The turn stays with the player.
func (s *State) draw(seat int) {
	p := &s.Players[seat]
	p.Hand = append(p.Hand, s.Boneyard[0])
	s.Boneyard = s.Boneyard[1:]
	s.DrawsThisTurn++
	s.PassStreak = 0
}

// pass gives up the turn. Only a pass by a seat that had nothing to play
// counts toward a blocked round; a timeout with moves available breaks the streak.
func (s *State) pass(seat int, stuck bool) {
	s.Players[seat].ConsecutivePasses++
	if stuck {
		s.PassStreak++
	} else {
		s.PassStreak = 0
	}
	if own := s.Board.OwnedBranch(seat); own >= 0 {
		s.Board = s.Board.WithPublic(own, true)
	}
	s.advanceTurn()
}

func (s *State) resign(seat int) {
	s.Players[seat].Resigned = true
	if s.Turn == seat {
		s.advanceTurn()
	}
}

func (s *State) advanceTurn() {
	s.Turn = s.nextActive(s.Turn)
	s.DrawsThisTurn = 0
}

func (s *State) finishRound(v Variant, t Terminal) []ScoreDelta {
	s.Terminal = &t
	deltas := v.ScoreRound(s, t)
	applyDeltas(s, deltas)
	s.Phase = PhaseRoundOver
	if MatchComplete(s) {
		s.Phase = PhaseMatchOver
	}
	return deltas
}

// Replay re-applies history to the state a round was dealt with. Applying the
// same moves to the same dealt state always yields the same result.
func Replay(initial *State, history []HistoryEntry) (*State, error) {
	s := initial
	for i, entry := range history {
		if entry.Seq != len(s.History)+1 {
			return nil, fmt.Errorf("replay: entry %d has seq %d, want %d", i, entry.Seq, len(s.History)+1)
		}
		next, _, err := Apply(s, entry.Move)
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", entry.Seq, err)
		}
		s = next
	}
	return s, nil
}
