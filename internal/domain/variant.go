package domain

import "fmt"

// Variant is the closed set of rule families. Each one owns its board layout
// and its scoring; everything else in the engine is shared.
type Variant interface {
	Kind() VariantKind

	// ScorePlacement returns the points earned by seat for the placement just applied to s.
	ScorePlacement(s *State, seat int) []ScoreDelta
	// ScoreRound settles a finished round.
	ScoreRound(s *State, t Terminal) []ScoreDelta

	// prepare builds the board a round starts with and returns the tiles left to deal.
	prepare(rules RuleSet, players, round int, set []Tile) (Board, []Tile)
	// open lays the first tile of a round on an empty board.
	open(rules RuleSet, root Tile) Board
	// grow adjusts the board after a tile lands on branch idx.
	grow(rules RuleSet, b Board, idx int) Board
}

// VariantFor returns the implementation of kind.
func VariantFor(kind VariantKind) (Variant, error) {
	switch kind {
	case AllFives:
		return allFives{}, nil
	case Block:
		return block{}, nil
	case Cuban:
		return cuban{}, nil
	case ChickenFoot:
		return chickenFoot{}, nil
	case MexicanTrain:
		return mexicanTrain{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, kind)
	}
}

// chain is the layout shared by every variant that opens on an empty table:
// a two-ended line, or a four-armed spinner when the first tile is a double.
// Without a double to open on, the first double laid on an end becomes the spinner.
type chain struct{}

func (chain) prepare(_ RuleSet, _, _ int, set []Tile) (Board, []Tile) {
	return Board{}, set
}

func (chain) open(rules RuleSet, root Tile) Board {
	if root.IsDouble() && rules.Spinner != SpinnerNone {
		arms := make([]Branch, 4)
		for i := range arms {
			arms[i] = Branch{Anchor: root.Left, Owner: SharedOwner, Public: true, Cap: rules.BranchCap, Flank: i >= 2}
		}
		return Board{HasRoot: true, Root: root, Branches: arms, Spinner: rules.Spinner}
	}
	return Board{
		HasRoot: true,
		Root:    root,
		Branches: []Branch{
			{Anchor: root.Left, Owner: SharedOwner, Public: true, Cap: rules.BranchCap},
			{Anchor: root.Right, Owner: SharedOwner, Public: true, Cap: rules.BranchCap},
		},
	}
}

func (chain) grow(rules RuleSet, b Board, idx int) Board {
	return b.WithSpinner(idx, rules.Spinner, rules.BranchCap)
}

type allFives struct{ chain }

func (allFives) Kind() VariantKind { return AllFives }

func (allFives) ScorePlacement(s *State, seat int) []ScoreDelta {
	if pts := FivesScore(s.Board); pts > 0 {
		return []ScoreDelta{{Seat: seat, Points: pts, Reason: ScorePlaced}}
	}
	return nil
}

func (allFives) ScoreRound(s *State, t Terminal) []ScoreDelta {
	return settleByPips(s, t, s.Rules.RoundToFive, true)
}

type block struct{ chain }

func (block) Kind() VariantKind                            { return Block }
func (block) ScorePlacement(*State, int) []ScoreDelta      { return nil }
func (block) ScoreRound(s *State, t Terminal) []ScoreDelta { return settleByPips(s, t, false, false) }

// cuban scores like block. The spinner cover rule is enforced by the board.
type cuban struct{ chain }

func (cuban) Kind() VariantKind                            { return Cuban }
func (cuban) ScorePlacement(*State, int) []ScoreDelta      { return nil }
func (cuban) ScoreRound(s *State, t Terminal) []ScoreDelta { return settleByPips(s, t, false, false) }

type chickenFoot struct{ chain }

func (chickenFoot) Kind() VariantKind                       { return ChickenFoot }
func (chickenFoot) ScorePlacement(*State, int) []ScoreDelta { return nil }

func (chickenFoot) ScoreRound(s *State, t Terminal) []ScoreDelta {
	return settleByPips(s, t, false, false)
}

// mexicanTrain starts every round from an engine double already on the table,
// with one private train per seat and a shared Mexican train.
type mexicanTrain struct{}

func (mexicanTrain) Kind() VariantKind { return MexicanTrain }

// EngineDouble returns the pip of the double that starts round under rules.
func EngineDouble(rules RuleSet, round int) int {
	return rules.MaxPip - round%(rules.MaxPip+1)
}

func (mexicanTrain) prepare(rules RuleSet, players, round int, set []Tile) (Board, []Tile) {
	pip := EngineDouble(rules, round)
	var engine Tile
	rest := make([]Tile, 0, len(set))
	for _, t := range set {
		if t.IsDouble() && t.Left == pip {
			engine = t
			continue
		}
		rest = append(rest, t)
	}

	trains := make([]Branch, 0, players+1)
	for seat := 0; seat < players; seat++ {
		trains = append(trains, Branch{Anchor: pip, Owner: seat, Cap: rules.BranchCap})
	}
	trains = append(trains, Branch{Anchor: pip, Owner: SharedOwner, Public: true, Cap: rules.BranchCap})
	return Board{HasRoot: true, Root: engine, Branches: trains}, rest
}

// open is never reached: the engine double is on the table before the first turn.
func (mexicanTrain) open(rules RuleSet, root Tile) Board {
	return chain{}.open(rules, root)
}

// grow leaves trains alone: doubles on a train never spin.
func (mexicanTrain) grow(_ RuleSet, b Board, _ int) Board { return b }

func (mexicanTrain) ScorePlacement(*State, int) []ScoreDelta { return nil }

func (mexicanTrain) ScoreRound(s *State, _ Terminal) []ScoreDelta {
	var deltas []ScoreDelta
	for seat, p := range s.Players {
		if pts := PipSum(p.Hand); pts > 0 {
			deltas = append(deltas, ScoreDelta{Seat: seat, Points: pts, Reason: ScorePenalty})
		}
	}
	return deltas
}
