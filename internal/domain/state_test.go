package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// tileOf returns the a-b tile of a double-maxPip set with its canonical id.
func tileOf(maxPip, a, b int) Tile {
	if a > b {
		a, b = b, a
	}
	for _, t := range NewTileSet(maxPip) {
		if t.Left == a && t.Right == b {
			return t
		}
	}
	panic(fmt.Sprintf("no tile %d-%d in double-%d", a, b, maxPip))
}

func tiles(maxPip int, pairs ...[2]int) []Tile {
	out := make([]Tile, len(pairs))
	for i, p := range pairs {
		out[i] = tileOf(maxPip, p[0], p[1])
	}
	return out
}

// newTestState seats one player per hand, seat 0 to move.
func newTestState(kind VariantKind, rules RuleSet, hands [][]Tile, boneyard []Tile) *State {
	players := make([]Player, len(hands))
	for i, h := range hands {
		players[i] = Player{ID: fmt.Sprintf("p%d", i), Hand: h}
	}
	return &State{
		Variant:     kind,
		Rules:       rules,
		Players:     players,
		Boneyard:    boneyard,
		Phase:       PhaseAwaitingMove,
		RoundScores: make([]int, len(hands)),
		MatchScores: make([]int, len(hands)),
	}
}

func seatPlayers(n int) []PlayerInfo {
	out := make([]PlayerInfo, n)
	for i := range out {
		out[i] = PlayerInfo{ID: fmt.Sprintf("user-%d", i)}
	}
	return out
}

func TestNewMatchDealsEveryVariant(t *testing.T) {
	for _, kind := range Variants {
		t.Run(string(kind), func(t *testing.T) {
			rules := DefaultRules(kind)
			s, err := NewMatch(kind, rules, seatPlayers(2), rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			require.Equal(t, PhaseAwaitingMove, s.Phase)
			require.Equal(t, SetSize(rules.MaxPip), s.TileCount())
			for _, p := range s.Players {
				require.Len(t, p.Hand, rules.HandSize)
			}
			if kind == MexicanTrain {
				require.True(t, s.Board.HasRoot)
				require.Equal(t, 9, s.Board.Root.Left)
				require.True(t, s.Board.Root.IsDouble())
				require.Len(t, s.Board.Branches, 3)
			} else {
				require.True(t, s.Board.Empty())
			}
		})
	}
}

func TestNewMatchOpensWithHighestDoubleHolder(t *testing.T) {
	rules := StrictRules(ChickenFoot)
	s, err := NewMatch(ChickenFoot, rules, seatPlayers(3), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	seat, best, ok := s.highestDoubleHolder()
	require.True(t, ok)
	require.Equal(t, seat, s.Turn)

	moves := LegalPlacements(s, s.Turn)
	require.Len(t, moves, 1)
	require.Equal(t, best.ID, moves[0].TileID)
}

func TestNewMatchRejectsBadSetup(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := NewMatch(Block, StrictRules(Block), seatPlayers(1), rng)
	require.ErrorIs(t, err, ErrTooFewPlayers)

	rules := StrictRules(Block)
	rules.HandSize = 10
	_, err = NewMatch(Block, rules, seatPlayers(3), rng)
	if !errors.Is(err, ErrInsufficientTiles) {
		t.Fatalf("expected ErrInsufficientTiles, got %v", err)
	}

	_, err = NewMatch("dominoes", StrictRules(Block), seatPlayers(2), rng)
	require.ErrorIs(t, err, ErrUnknownVariant)
}

func TestNextRoundCarriesMatchScores(t *testing.T) {
	rules := StrictRules(MexicanTrain)
	s, err := NewMatch(MexicanTrain, rules, seatPlayers(2), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	_, err = s.NextRound(rand.New(rand.NewSource(3)))
	require.ErrorIs(t, err, ErrInvalidPhaseTransition)

	over := s.clone()
	over.Phase = PhaseRoundOver
	over.MatchScores = []int{12, 40}
	over.Terminal = &Terminal{Kind: TerminalBlocked, Winner: 0}

	next, err := over.NextRound(rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	require.Equal(t, 1, next.Round)
	require.Equal(t, []int{12, 40}, next.MatchScores)
	require.Equal(t, []int{0, 0}, next.RoundScores)
	require.Equal(t, 8, next.Board.Root.Left)
	require.Equal(t, 1, next.Turn)
	require.Empty(t, next.History)
}
