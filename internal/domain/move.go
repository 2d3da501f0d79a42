package domain

import "fmt"

// MoveKind tags the move union.
type MoveKind string

const (
	MovePlace   MoveKind = "place"
	MoveDraw    MoveKind = "draw"
	MovePass    MoveKind = "pass"
	MoveResign  MoveKind = "resign"
	MoveTimeout MoveKind = "timeout"
)

// Move is a single action by the player at Seat. TileID and End are only meaningful for MovePlace.
type Move struct {
	Kind   MoveKind `json:"kind"`
	Seat   int      `json:"seat"`
	TileID int      `json:"tile_id,omitempty"`
	End    EndRef   `json:"end,omitempty"`
}

func PlaceMove(seat, tileID int, end EndRef) Move {
	return Move{Kind: MovePlace, Seat: seat, TileID: tileID, End: end}
}

func DrawMove(seat int) Move    { return Move{Kind: MoveDraw, Seat: seat} }
func PassMove(seat int) Move    { return Move{Kind: MovePass, Seat: seat} }
func ResignMove(seat int) Move  { return Move{Kind: MoveResign, Seat: seat} }
func TimeoutMove(seat int) Move { return Move{Kind: MoveTimeout, Seat: seat} }

func (m Move) String() string {
	if m.Kind == MovePlace {
		if m.End.IsOpening() {
			return fmt.Sprintf("seat %d opens with tile %d", m.Seat, m.TileID)
		}
		return fmt.Sprintf("seat %d plays tile %d on branch %d (%d)", m.Seat, m.TileID, m.End.Branch, m.End.Value)
	}
	return fmt.Sprintf("seat %d %s", m.Seat, m.Kind)
}

// HistoryEntry records an applied move. Seq starts at 1 and grows by one per move in a round.
type HistoryEntry struct {
	Seq  int  `json:"seq"`
	Move Move `json:"move"`
}
