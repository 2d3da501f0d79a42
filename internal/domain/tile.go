package domain

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// DefaultMaxPip is the highest pip of a standard double-six set.
const DefaultMaxPip = 6

// Tile is a single domino. Tiles produced by NewTileSet have Left <= Right.
type Tile struct {
	ID    int `json:"id"`
	Left  int `json:"left"`
	Right int `json:"right"`
}

// IsDouble reports whether both faces carry the same pip.
func (t Tile) IsDouble() bool {
	return t.Left == t.Right
}

// Pips returns the total pip count of the tile.
func (t Tile) Pips() int {
	return t.Left + t.Right
}

// Has reports whether either face shows pip.
func (t Tile) Has(pip int) bool {
	return t.Left == pip || t.Right == pip
}

// Other returns the face left exposed when the tile is matched against pip.
func (t Tile) Other(pip int) (int, bool) {
	switch pip {
	case t.Left:
		return t.Right, true
	case t.Right:
		return t.Left, true
	default:
		return 0, false
	}
}

func (t Tile) String() string {
	return fmt.Sprintf("%d-%d", t.Left, t.Right)
}

// SetSize returns how many tiles a double-maxPip set contains.
func SetSize(maxPip int) int {
	return (maxPip + 1) * (maxPip + 2) / 2
}

// NewTileSet returns every unordered pip pair of a double-maxPip set exactly once,
// ordered by left pip then right pip. IDs are the index in that order.
func NewTileSet(maxPip int) []Tile {
	tiles := make([]Tile, 0, SetSize(maxPip))
	for left := 0; left <= maxPip; left++ {
		for right := left; right <= maxPip; right++ {
			tiles = append(tiles, Tile{ID: len(tiles), Left: left, Right: right})
		}
	}
	return tiles
}

// Shuffle returns a uniformly permuted copy of tiles using the supplied rng.
func Shuffle(tiles []Tile, rng *rand.Rand) []Tile {
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal splits tiles into playerCount hands of handSize, in order, and returns the remainder as the boneyard.
func Deal(tiles []Tile, playerCount, handSize int) ([][]Tile, []Tile, error) {
	need := playerCount * handSize
	if playerCount <= 0 || handSize <= 0 || need > len(tiles) {
		return nil, nil, fmt.Errorf("%w: %d players x %d tiles needs %d, set has %d",
			ErrInsufficientTiles, playerCount, handSize, need, len(tiles))
	}

	hands := make([][]Tile, playerCount)
	idx := 0
	for i := range hands {
		hands[i] = append([]Tile{}, tiles[idx:idx+handSize]...)
		idx += handSize
	}
	boneyard := append([]Tile{}, tiles[idx:]...)
	return hands, boneyard, nil
}

// FindTile looks a tile up by id.
func FindTile(hand []Tile, id int) (Tile, bool) {
	for _, t := range hand {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// RemoveTile returns a new hand without the tile carrying id.
func RemoveTile(hand []Tile, id int) ([]Tile, bool) {
	updated := make([]Tile, 0, len(hand))
	found := false
	for _, t := range hand {
		if t.ID == id && !found {
			found = true
			continue
		}
		updated = append(updated, t)
	}
	if !found {
		return hand, false
	}
	return updated, true
}

// PipSum totals the pips of every tile.
func PipSum(tiles []Tile) int {
	sum := 0
	for _, t := range tiles {
		sum += t.Pips()
	}
	return sum
}

// HighestDouble returns the double with the most pips, if any.
func HighestDouble(tiles []Tile) (Tile, bool) {
	best, found := Tile{}, false
	for _, t := range tiles {
		if t.IsDouble() && (!found || t.Left > best.Left) {
			best, found = t, true
		}
	}
	return best, found
}
