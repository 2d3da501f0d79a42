package internal

import (
	"testing"

	"domino/internal/domain"
)

func TestProfileHand_CountsPips(t *testing.T) {
	set := domain.NewTileSet(6)
	pick := func(a, b int) domain.Tile {
		for _, tile := range set {
			if tile.Left == a && tile.Right == b {
				return tile
			}
		}
		t.Fatalf("no tile %d-%d", a, b)
		return domain.Tile{}
	}
	hand := []domain.Tile{pick(0, 0), pick(0, 3), pick(3, 6), pick(5, 5)}

	profile := ProfileHand(hand, 6)

	if profile.TotalTiles != 4 {
		t.Fatalf("TotalTiles = %d, want 4", profile.TotalTiles)
	}
	if profile.Doubles != 2 {
		t.Fatalf("Doubles = %d, want 2", profile.Doubles)
	}
	if profile.PipTotal != 22 {
		t.Fatalf("PipTotal = %d, want 22", profile.PipTotal)
	}
	if profile.DistinctPips != 4 {
		t.Fatalf("DistinctPips = %d, want 4", profile.DistinctPips)
	}
	if profile.Count(0) != 2 || profile.Count(3) != 2 || profile.Count(5) != 1 || profile.Count(1) != 0 {
		t.Fatalf("unexpected pip counts %v", profile.PipCounts)
	}
	if profile.Count(9) != 0 {
		t.Fatalf("out of range pip should count 0")
	}
}

func TestProfileHand_Empty(t *testing.T) {
	profile := ProfileHand(nil, 6)
	if profile.TotalTiles != 0 || profile.DistinctPips != 0 {
		t.Fatalf("empty hand profile = %+v", profile)
	}
}
