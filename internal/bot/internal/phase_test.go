package internal

import (
	"testing"

	"domino/internal/domain"
)

func phaseState(handSizes []int, boneyard int, boardTiles int) *domain.State {
	set := domain.NewTileSet(6)
	rules := domain.StrictRules(domain.AllFives)
	s := &domain.State{Variant: domain.AllFives, Rules: rules}
	idx := 0
	for _, n := range handSizes {
		s.Players = append(s.Players, domain.Player{Hand: set[idx : idx+n]})
		idx += n
	}
	s.Boneyard = set[idx : idx+boneyard]
	if boardTiles > 0 {
		s.Board = domain.Board{HasRoot: true, Root: set[27]}
		for i := 1; i < boardTiles; i++ {
			s.Board.Branches = append(s.Board.Branches, domain.Branch{Placements: []domain.Placement{{}}})
		}
	}
	return s
}

func TestDetectPhase_Opening(t *testing.T) {
	s := phaseState([]int{7, 7}, 14, 0)
	if got := DetectPhase(s); got != PhaseOpening {
		t.Fatalf("DetectPhase = %v, want %v", got, PhaseOpening)
	}
}

func TestDetectPhase_Mid(t *testing.T) {
	s := phaseState([]int{6, 5}, 10, 3)
	if got := DetectPhase(s); got != PhaseMid {
		t.Fatalf("DetectPhase = %v, want %v", got, PhaseMid)
	}
}

func TestDetectPhase_EndByHands(t *testing.T) {
	s := phaseState([]int{5, 4}, 10, 5)
	if got := DetectPhase(s); got != PhaseEnd {
		t.Fatalf("DetectPhase = %v, want %v", got, PhaseEnd)
	}
}

func TestDetectPhase_EndByBoneyard(t *testing.T) {
	s := phaseState([]int{7, 7}, 4, 3)
	if got := DetectPhase(s); got != PhaseEnd {
		t.Fatalf("DetectPhase = %v, want %v", got, PhaseEnd)
	}

	s.Rules.AllowDraw = false
	if got := DetectPhase(s); got != PhaseMid {
		t.Fatalf("without drawing, DetectPhase = %v, want %v", got, PhaseMid)
	}
}
