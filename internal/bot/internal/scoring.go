package internal

import (
	"domino/internal/bot/brain"
	"domino/internal/domain"
)

// Weights scale each factor of a variant's move evaluation.
type Weights struct {
	Immediate float64 `json:"immediate"`
	Future    float64 `json:"future"`
	Blocking  float64 `json:"blocking"`
	Setup     float64 `json:"setup"`
	Risk      float64 `json:"risk"`
	Endgame   float64 `json:"endgame"`
}

// Factors are the raw heuristic values of one candidate move.
type Factors struct {
	Immediate float64 `json:"immediate"`
	Future    float64 `json:"future"`
	Blocking  float64 `json:"blocking"`
	Setup     float64 `json:"setup"`
	Risk      float64 `json:"risk"`
	Endgame   float64 `json:"endgame"`
}

// Total combines the factors under w. Risk is subtracted.
func (f Factors) Total(w Weights) float64 {
	return f.Immediate*w.Immediate +
		f.Future*w.Future +
		f.Blocking*w.Blocking +
		f.Setup*w.Setup -
		f.Risk*w.Risk +
		f.Endgame*w.Endgame
}

const (
	DoubleBonus      = 2.0
	FollowUpBonus    = 0.5
	BlockDoubleBonus = 1.5
	ScarceEndBonus   = 2.0
	FlexiblePips     = 4
	FlexibilityBonus = 1.0
	SpinnerBonus     = 2.0
	HighTileHandSize = 5
	DeadTilePenalty  = 1.0
	GoingOutBonus    = 10.0
)

// ScoredMove holds a move with its factors, weighted total and the hand it leaves.
type ScoredMove struct {
	Move      domain.Move
	Tile      domain.Tile
	Factors   Factors
	Total     float64
	Remaining []domain.Tile
}

// BuildScoredMoves scores each move for seat by simulating it against s.
// Moves the engine rejects are skipped; s is never modified.
func BuildScoredMoves(s *domain.State, seat int, moves []domain.Move, weights Weights) []ScoredMove {
	phase := DetectPhase(s)
	memory := brain.NewMemory(s.Rules.MaxPip)
	hand := s.Players[seat].Hand

	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		if move.Kind != domain.MovePlace {
			scored = append(scored, ScoredMove{Move: move, Remaining: hand})
			continue
		}

		next, deltas, err := domain.Apply(s, move)
		if err != nil {
			continue
		}
		tile, _ := domain.FindTile(hand, move.TileID)
		remaining := next.Players[seat].Hand
		profile := ProfileHand(remaining, s.Rules.MaxPip)
		memory.Observe(next, seat)

		f := Factors{
			Immediate: immediate(deltas, seat, tile),
			Future:    future(next, seat, remaining),
			Blocking:  blocking(next, move, tile, memory),
			Setup:     setup(s.Board, next, profile),
			Risk:      risk(tile, len(hand), profile, phase, s.Rules.MaxPip),
			Endgame:   endgame(tile, remaining, phase, s.Rules.MaxPip),
		}
		scored = append(scored, ScoredMove{
			Move:      move,
			Tile:      tile,
			Factors:   f,
			Total:     f.Total(weights),
			Remaining: remaining,
		})
	}
	return scored
}

func immediate(deltas []domain.ScoreDelta, seat int, tile domain.Tile) float64 {
	points := 0.0
	for _, d := range deltas {
		if d.Seat == seat && d.Reason == domain.ScorePlaced {
			points += float64(d.Points)
		}
	}
	if tile.IsDouble() {
		points += DoubleBonus
	}
	return points
}

// future counts the remaining tiles that fit an end after the move, with a bonus
// for follow-ups that would score in All Fives.
func future(next *domain.State, seat int, remaining []domain.Tile) float64 {
	ends := next.Board.OpenEnds(seat)
	value := 0.0
	for _, t := range remaining {
		fits, scores := false, false
		for _, end := range ends {
			if !t.Has(end.Value) {
				continue
			}
			fits = true
			if next.Variant == domain.AllFives {
				if b, err := next.Board.Place(t, end); err == nil && domain.FivesScore(b) > 0 {
					scores = true
				}
			}
		}
		if fits {
			value++
		}
		if scores {
			value += FollowUpBonus
		}
	}
	return value
}

func blocking(next *domain.State, move domain.Move, tile domain.Tile, memory *brain.GameMemory) float64 {
	value := 0.0
	if tile.IsDouble() {
		value += BlockDoubleBonus
	}
	for _, pip := range exposedPips(next.Board, move) {
		if memory.IsScarce(pip) {
			value += ScarceEndBonus
		}
	}
	return value
}

// exposedPips lists the distinct end values the move created.
func exposedPips(b domain.Board, move domain.Move) []int {
	if !move.End.IsOpening() {
		if br, ok := b.Branch(move.End.Branch); ok {
			return []int{br.Tail()}
		}
		return nil
	}
	var pips []int
	seen := make(map[int]bool)
	for _, br := range b.Branches {
		if !seen[br.Tail()] {
			seen[br.Tail()] = true
			pips = append(pips, br.Tail())
		}
	}
	return pips
}

func setup(prev domain.Board, next *domain.State, profile HandProfile) float64 {
	value := 0.0
	if profile.DistinctPips >= FlexiblePips {
		value += FlexibilityBonus
	}
	if prev.Spinner == "" && next.Board.Spinner != "" {
		value += SpinnerBonus
	}
	return value
}

// risk penalises shedding a heavy tile early and leaving a lone tile on a pip.
func risk(tile domain.Tile, handSize int, profile HandProfile, phase GamePhase, maxPip int) float64 {
	value := 0.0
	if phase != PhaseEnd && handSize >= HighTileHandSize && tile.Pips() > maxPip {
		value += float64(tile.Pips()) / float64(maxPip)
	}
	faces := []int{tile.Left}
	if !tile.IsDouble() {
		faces = append(faces, tile.Right)
	}
	for _, pip := range faces {
		if profile.Count(pip) == 1 {
			value += DeadTilePenalty
		}
	}
	return value
}

func endgame(tile domain.Tile, remaining []domain.Tile, phase GamePhase, maxPip int) float64 {
	if phase != PhaseEnd {
		return 0
	}
	value := float64(tile.Pips()) / float64(maxPip)
	if len(remaining) == 0 {
		value += GoingOutBonus
	}
	return value
}
