package brain

import (
	"domino/internal/domain"
)

// TileStatus represents what the bot knows about a specific tile.
type TileStatus int

const (
	StatusUnknown TileStatus = iota // In an opponent's hand or the boneyard
	StatusMine                      // In the bot's hand
	StatusPlayed                    // Already on the table
)

// GameMemory stores the bot's private view of a round. Tiles are indexed by id.
type GameMemory struct {
	MaxPip     int
	TileStatus []TileStatus
}

// NewMemory initializes a fresh memory for a double-maxPip set.
func NewMemory(maxPip int) *GameMemory {
	return &GameMemory{
		MaxPip:     maxPip,
		TileStatus: make([]TileStatus, domain.SetSize(maxPip)),
	}
}

// Reset clears the memory for a new round.
func (m *GameMemory) Reset() {
	for i := range m.TileStatus {
		m.TileStatus[i] = StatusUnknown
	}
}

// MarkMine records the tiles currently in the bot's hand.
func (m *GameMemory) MarkMine(tiles []domain.Tile) {
	m.mark(tiles, StatusMine)
}

// MarkPlayed records tiles that are on the table.
func (m *GameMemory) MarkPlayed(tiles []domain.Tile) {
	m.mark(tiles, StatusPlayed)
}

func (m *GameMemory) mark(tiles []domain.Tile, status TileStatus) {
	for _, t := range tiles {
		if t.ID >= 0 && t.ID < len(m.TileStatus) {
			m.TileStatus[t.ID] = status
		}
	}
}

// Observe rebuilds the memory from what seat can see in s.
func (m *GameMemory) Observe(s *domain.State, seat int) {
	m.Reset()
	m.MarkPlayed(s.Board.Tiles())
	if seat >= 0 && seat < len(s.Players) {
		m.MarkMine(s.Players[seat].Hand)
	}
}

// Played returns how many tiles showing pip are already on the table.
func (m *GameMemory) Played(pip int) int {
	n := 0
	for _, t := range domain.NewTileSet(m.MaxPip) {
		if t.Has(pip) && m.TileStatus[t.ID] == StatusPlayed {
			n++
		}
	}
	return n
}

// IsScarce reports whether at most one tile showing pip is still off the table.
// A double-N set has N+1 tiles showing each pip. Tiles in the bot's own hand
// do not count: they can still be played onto the end.
func (m *GameMemory) IsScarce(pip int) bool {
	return m.Played(pip) >= m.MaxPip
}
