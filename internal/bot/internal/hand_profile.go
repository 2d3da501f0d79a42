package internal

import "domino/internal/domain"

// HandProfile summarizes a hand's structure for move scoring.
type HandProfile struct {
	TotalTiles   int
	Doubles      int
	PipTotal     int
	DistinctPips int
	// PipCounts[p] is how many tiles in the hand show pip p.
	PipCounts []int
}

// ProfileHand counts doubles, pips and pip coverage of hand.
func ProfileHand(hand []domain.Tile, maxPip int) HandProfile {
	profile := HandProfile{
		TotalTiles: len(hand),
		PipCounts:  make([]int, maxPip+1),
	}
	for _, t := range hand {
		profile.PipTotal += t.Pips()
		if t.IsDouble() {
			profile.Doubles++
		}
		if t.Left <= maxPip {
			profile.PipCounts[t.Left]++
		}
		if !t.IsDouble() && t.Right <= maxPip {
			profile.PipCounts[t.Right]++
		}
	}
	for _, n := range profile.PipCounts {
		if n > 0 {
			profile.DistinctPips++
		}
	}
	return profile
}

// Count returns how many tiles in the profiled hand show pip.
func (p HandProfile) Count(pip int) int {
	if pip < 0 || pip >= len(p.PipCounts) {
		return 0
	}
	return p.PipCounts[pip]
}
