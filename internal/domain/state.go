package domain

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Phase represents the lifecycle stage of a domino session.
type Phase string

const (
	// PhaseDealing is the transient stage while a round is being dealt.
	PhaseDealing Phase = "dealing"
	// PhaseAwaitingMove waits for the seat holding the turn.
	PhaseAwaitingMove Phase = "awaiting_move"
	// PhaseResolving is held while a move is validated and applied.
	PhaseResolving Phase = "resolving"
	// PhaseRoundOver follows a terminal round until the next round is dealt.
	PhaseRoundOver Phase = "round_over"
	// PhaseMatchOver is final.
	PhaseMatchOver Phase = "match_over"
)

// PlayerInfo is what the engine needs to know about a participant when a match starts.
type PlayerInfo struct {
	ID    string `json:"id"`
	IsBot bool   `json:"is_bot"`
}

// Player is the engine view of a seated participant.
type Player struct {
	ID                string `json:"id"`
	Hand              []Tile `json:"hand"`
	IsBot             bool   `json:"is_bot"`
	ConsecutivePasses int    `json:"consecutive_passes"`
	Resigned          bool   `json:"resigned"`
}

// State is the authoritative, immutable aggregate of a session. Transitions
// produce a new State; a published *State is never written to again.
type State struct {
	Variant       VariantKind    `json:"variant"`
	Rules         RuleSet        `json:"rules"`
	Players       []Player       `json:"players"`
	Board         Board          `json:"board"`
	Boneyard      []Tile         `json:"boneyard"`
	Turn          int            `json:"turn"`
	Phase         Phase          `json:"phase"`
	Round         int            `json:"round"`
	RoundScores   []int          `json:"round_scores"`
	MatchScores   []int          `json:"match_scores"`
	History       []HistoryEntry `json:"history"`
	DrawsThisTurn int            `json:"draws_this_turn"`
	PassStreak    int            `json:"pass_streak"` // passes since the last placement or draw
	Terminal      *Terminal      `json:"terminal,omitempty"`
}

// NewMatch deals the first round of a match.
func NewMatch(kind VariantKind, rules RuleSet, players []PlayerInfo, rng *rand.Rand) (*State, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(players) < 2 {
		return nil, ErrTooFewPlayers
	}
	seats := make([]Player, len(players))
	for i, p := range players {
		seats[i] = Player{ID: p.ID, IsBot: p.IsBot}
	}
	return dealRound(kind, rules, seats, 0, make([]int, len(players)), -1, rng)
}

// NextRound deals the following round, carrying match scores and resignations over.
func (s *State) NextRound(rng *rand.Rand) (*State, error) {
	if s.Phase != PhaseRoundOver {
		return nil, reject(ReasonInvalidPhase, "next round requested during %s", s.Phase)
	}
	leader := -1
	if s.Terminal != nil {
		leader = s.Terminal.Winner
	}
	seats := make([]Player, len(s.Players))
	for i, p := range s.Players {
		seats[i] = Player{ID: p.ID, IsBot: p.IsBot, Resigned: p.Resigned}
	}
	return dealRound(s.Variant, s.Rules, seats, s.Round+1, append([]int(nil), s.MatchScores...), leader, rng)
}

func dealRound(kind VariantKind, rules RuleSet, seats []Player, round int, matchScores []int, leader int, rng *rand.Rand) (*State, error) {
	v, err := VariantFor(kind)
	if err != nil {
		return nil, err
	}
	board, set := v.prepare(rules, len(seats), round, NewTileSet(rules.MaxPip))
	hands, boneyard, err := Deal(Shuffle(set, rng), len(seats), rules.HandSize)
	if err != nil {
		return nil, err
	}
	for i := range seats {
		seats[i].Hand = hands[i]
	}

	s := &State{
		Variant:     kind,
		Rules:       rules,
		Players:     seats,
		Board:       board,
		Boneyard:    boneyard,
		Phase:       PhaseDealing,
		Round:       round,
		RoundScores: make([]int, len(seats)),
		MatchScores: matchScores,
	}
	s.Turn = s.firstTurn(leader)
	s.Phase = PhaseAwaitingMove
	return s, nil
}

// firstTurn picks who leads a round: the rotating seat in Mexican Train, the
// holder of the highest double when that double must open, else the leader.
func (s *State) firstTurn(leader int) int {
	if s.Variant == MexicanTrain {
		return s.nextActive(s.Round%len(s.Players) - 1)
	}
	if leader < 0 || s.Rules.Opening == OpenHighestDouble || !s.active(leader) {
		if seat, _, ok := s.highestDoubleHolder(); ok {
			return seat
		}
	}
	if s.active(leader) {
		return leader
	}
	return s.nextActive(-1)
}

func (s *State) highestDoubleHolder() (int, Tile, bool) {
	seat, best, found := -1, Tile{}, false
	for i, p := range s.Players {
		if p.Resigned {
			continue
		}
		if d, ok := HighestDouble(p.Hand); ok && (!found || d.Left > best.Left) {
			seat, best, found = i, d, true
		}
	}
	return seat, best, found
}

func (s *State) active(seat int) bool {
	return seat >= 0 && seat < len(s.Players) && !s.Players[seat].Resigned
}

// ActiveSeats returns the seats that have not resigned.
func (s *State) ActiveSeats() []int {
	seats := make([]int, 0, len(s.Players))
	for i, p := range s.Players {
		if !p.Resigned {
			seats = append(seats, i)
		}
	}
	return seats
}

// nextActive returns the first active seat after from, wrapping around.
// It returns from when no other seat is active.
func (s *State) nextActive(from int) int {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		seat := ((from+step)%n + n) % n
		if !s.Players[seat].Resigned {
			return seat
		}
	}
	return from
}

// Player returns the player at seat.
func (s *State) Player(seat int) (Player, error) {
	if seat < 0 || seat >= len(s.Players) {
		return Player{}, fmt.Errorf("%w: seat %d", ErrUnknownPlayer, seat)
	}
	return s.Players[seat], nil
}

// SeatOf returns the seat of the player with id.
func (s *State) SeatOf(id string) (int, bool) {
	for i, p := range s.Players {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

// TileCount returns how many tiles the round holds in hands, on the board and in the boneyard.
func (s *State) TileCount() int {
	n := s.Board.TileCount() + len(s.Boneyard)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// clone copies every slice a transition may touch. Board values are immutable and shared.
func (s *State) clone() *State {
	next := *s
	next.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = append([]Tile(nil), p.Hand...)
		next.Players[i] = p
	}
	next.Boneyard = append([]Tile(nil), s.Boneyard...)
	next.RoundScores = append([]int(nil), s.RoundScores...)
	next.MatchScores = append([]int(nil), s.MatchScores...)
	next.History = append([]HistoryEntry(nil), s.History...)
	if s.Terminal != nil {
		t := *s.Terminal
		next.Terminal = &t
	}
	return &next
}
