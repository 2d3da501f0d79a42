package domain

// SharedOwner marks a branch no single player owns.
const SharedOwner = -1

// OpeningEnd is the end reference used for the first tile of a round.
var OpeningEnd = EndRef{Branch: -1, Value: -1}

// Placement is a tile laid on a branch together with the pip it leaves exposed.
type Placement struct {
	Tile    Tile `json:"tile"`
	Exposed int  `json:"exposed"`
}

// Branch is one chain growing away from the root tile.
type Branch struct {
	Anchor     int         `json:"anchor"`
	Placements []Placement `json:"placements,omitempty"`
	Owner      int         `json:"owner"`
	Public     bool        `json:"public"`
	Cap        int         `json:"cap,omitempty"`
	Flank      bool        `json:"flank,omitempty"`
}

// Tail returns the pip currently exposed at the far end of the branch.
func (b Branch) Tail() int {
	if n := len(b.Placements); n > 0 {
		return b.Placements[n-1].Exposed
	}
	return b.Anchor
}

// Covered reports whether at least one tile sits on the branch.
func (b Branch) Covered() bool {
	return len(b.Placements) > 0
}

// Closed reports whether the branch reached its tile cap.
func (b Branch) Closed() bool {
	return b.Cap > 0 && len(b.Placements) >= b.Cap
}

// EndRef addresses an open end by branch index and the pip value it exposes.
type EndRef struct {
	Branch int `json:"branch"`
	Value  int `json:"value"`
}

// IsOpening reports whether the reference designates the first placement of a round.
func (e EndRef) IsOpening() bool {
	return e.Branch < 0
}

// Board is an immutable layout: a root tile and the branches growing from it.
// Every method returns a new Board and leaves the receiver untouched.
type Board struct {
	HasRoot  bool        `json:"has_root"`
	Root     Tile        `json:"root"`
	Branches []Branch    `json:"branches,omitempty"`
	Spinner  SpinnerRule `json:"spinner,omitempty"` // set once a double becomes the four-sided spinner
	Hub      *Hub        `json:"hub,omitempty"`     // nil when the spinner is the root tile
}

// Hub locates a spinner that was laid on a branch instead of opening the round.
// The branch carries on past the double as one arm and two flank branches
// anchored on the double are the others.
type Hub struct {
	Branch int `json:"branch"`
	Depth  int `json:"depth"` // index of the double among the branch placements
}

// Empty reports whether no tile has been laid yet.
func (b Board) Empty() bool {
	return !b.HasRoot
}

// Tiles returns every tile on the board, root first.
func (b Board) Tiles() []Tile {
	if !b.HasRoot {
		return nil
	}
	out := []Tile{b.Root}
	for _, br := range b.Branches {
		for _, p := range br.Placements {
			out = append(out, p.Tile)
		}
	}
	return out
}

// TileCount returns the number of tiles on the board.
func (b Board) TileCount() int {
	if !b.HasRoot {
		return 0
	}
	n := 1
	for _, br := range b.Branches {
		n += len(br.Placements)
	}
	return n
}

// Branch returns the branch at idx.
func (b Board) Branch(idx int) (Branch, bool) {
	if idx < 0 || idx >= len(b.Branches) {
		return Branch{}, false
	}
	return b.Branches[idx], true
}

// OwnedBranch returns the index of the branch owned by seat, or -1.
func (b Board) OwnedBranch(seat int) int {
	for i, br := range b.Branches {
		if br.Owner == seat {
			return i
		}
	}
	return -1
}

// PipCount returns how many board tiles carry pip.
func (b Board) PipCount(pip int) int {
	n := 0
	for _, t := range b.Tiles() {
		if t.Has(pip) {
			n++
		}
	}
	return n
}

// Accessible reports whether seat may extend the branch at idx.
func (b Board) Accessible(seat, idx int) error {
	br, ok := b.Branch(idx)
	if !ok || b.Empty() {
		return reject(ReasonEndNotOpen, "branch %d does not exist", idx)
	}
	if br.Closed() {
		return reject(ReasonEndNotOpen, "branch %d is closed", idx)
	}
	if br.Owner != SharedOwner && br.Owner != seat && !br.Public {
		return reject(ReasonIllegalBranch, "train %d belongs to seat %d", idx, br.Owner)
	}

	switch b.Spinner {
	case SpinnerFlankFirst:
		if br.Flank && !b.primaryCovered() {
			return reject(ReasonIllegalBranch, "flank %d opens after both primary arms are covered", idx)
		}
	case SpinnerCoverAll:
		if b.armTiles(idx) > 0 && !b.armsCovered() {
			return reject(ReasonIllegalBranch, "every spinner arm must be covered before arm %d grows", idx)
		}
	}
	return nil
}

// OpenEnds lists the ends seat may currently play on, in branch order.
func (b Board) OpenEnds(seat int) []EndRef {
	if b.Empty() {
		return nil
	}
	ends := make([]EndRef, 0, len(b.Branches))
	for i, br := range b.Branches {
		if b.Accessible(seat, i) != nil {
			continue
		}
		ends = append(ends, EndRef{Branch: i, Value: br.Tail()})
	}
	return ends
}

// HasPrivate reports whether some train is still closed to other players.
func (b Board) HasPrivate() bool {
	for _, br := range b.Branches {
		if br.Owner != SharedOwner && !br.Public {
			return true
		}
	}
	return false
}

// armTiles returns how many tiles sit on spinner arm idx, or -1 when the
// branch is not an arm of the spinner.
func (b Board) armTiles(idx int) int {
	if b.Spinner == "" {
		return -1
	}
	br := b.Branches[idx]
	switch {
	case b.Hub == nil || br.Flank:
		return len(br.Placements)
	case idx == b.Hub.Branch:
		return len(br.Placements) - b.Hub.Depth - 1
	}
	return -1
}

// primaryCovered reports whether both arms in line with the spinner hold a tile.
// A hub spinner already has its inward side covered by the tile it was laid on.
func (b Board) primaryCovered() bool {
	if b.Hub != nil {
		return b.armTiles(b.Hub.Branch) > 0
	}
	return b.Branches[0].Covered() && b.Branches[1].Covered()
}

func (b Board) armsCovered() bool {
	for i := range b.Branches {
		if b.armTiles(i) == 0 {
			return false
		}
	}
	return true
}

// Place lays tile on the branch named by end and returns the resulting board.
// The seat is not checked here; use Accessible for ownership and spinner rules.
func (b Board) Place(tile Tile, end EndRef) (Board, error) {
	br, ok := b.Branch(end.Branch)
	if !ok || b.Empty() {
		return b, reject(ReasonEndNotOpen, "branch %d does not exist", end.Branch)
	}
	if br.Closed() {
		return b, reject(ReasonEndNotOpen, "branch %d is closed", end.Branch)
	}
	tail := br.Tail()
	if end.Value != tail {
		return b, reject(ReasonEndNotOpen, "branch %d exposes %d, not %d", end.Branch, tail, end.Value)
	}
	exposed, ok := tile.Other(tail)
	if !ok {
		return b, reject(ReasonPipMismatch, "tile %s does not match %d", tile, tail)
	}

	next := b.cloneBranches()
	placements := make([]Placement, len(br.Placements), len(br.Placements)+1)
	copy(placements, br.Placements)
	br.Placements = append(placements, Placement{Tile: tile, Exposed: exposed})
	next.Branches[end.Branch] = br
	return next, nil
}

// WithSpinner turns a double just laid at the tail of branch idx into the
// spinner, adding its two flank arms. Boards that already have a spinner, or
// whose branch does not end on a double, are returned unchanged.
func (b Board) WithSpinner(idx int, rule SpinnerRule, branchCap int) Board {
	br, ok := b.Branch(idx)
	if !ok || b.Spinner != "" || rule == SpinnerNone || !br.Covered() {
		return b
	}
	last := br.Placements[len(br.Placements)-1]
	if !last.Tile.IsDouble() {
		return b
	}

	next := b.cloneBranches()
	next.Spinner = rule
	next.Hub = &Hub{Branch: idx, Depth: len(br.Placements) - 1}
	for i := 0; i < 2; i++ {
		next.Branches = append(next.Branches, Branch{Anchor: last.Exposed, Owner: SharedOwner, Public: true, Cap: branchCap, Flank: true})
	}
	return next
}

// WithPublic returns a board where the branch at idx has the given public flag.
func (b Board) WithPublic(idx int, public bool) Board {
	if idx < 0 || idx >= len(b.Branches) || b.Branches[idx].Public == public {
		return b
	}
	next := b.cloneBranches()
	next.Branches[idx].Public = public
	return next
}

func (b Board) cloneBranches() Board {
	branches := make([]Branch, len(b.Branches))
	copy(branches, b.Branches)
	return Board{HasRoot: b.HasRoot, Root: b.Root, Branches: branches, Spinner: b.Spinner, Hub: b.Hub}
}
