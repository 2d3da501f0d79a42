package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestApplyDoubleSixOpening(t *testing.T) {
	set := NewTileSet(6)
	sixes := set[len(set)-1]
	require.Equal(t, "6-6", sixes.String())

	hands, boneyard, err := Deal(append([]Tile{sixes}, set[:len(set)-1]...), 2, 7)
	require.NoError(t, err)
	require.Len(t, boneyard, 14)

	s := newTestState(AllFives, StrictRules(AllFives), hands, boneyard)
	require.Equal(t, 28, s.TileCount())

	open := PlaceMove(0, sixes.ID, OpeningEnd)
	require.NoError(t, IsLegal(s, open))

	next, deltas, err := Apply(s, open)
	require.NoError(t, err)

	ends := next.Board.OpenEnds(1)
	require.Len(t, ends, 2)
	require.Equal(t, []int{6, 6}, []int{ends[0].Value, ends[1].Value})
	require.Equal(t, 12, EndSum(next.Board))
	require.Empty(t, deltas, "12 is not a multiple of five")
	require.Equal(t, 0, next.RoundScores[0])
	require.Equal(t, 1, next.Turn)
	require.Len(t, next.Players[0].Hand, 6)
	require.Equal(t, 28, next.TileCount())

	require.True(t, s.Board.Empty(), "apply must not touch its input")
	require.Len(t, s.Players[0].Hand, 7)
}

func TestApplyAllFivesPlacementScores(t *testing.T) {
	rules := StrictRules(AllFives)
	tests := []struct {
		name string
		hand []Tile
		want int
	}{
		{name: "ends 2 and 3", hand: tiles(6, [2]int{2, 3}), want: 5},
		{name: "ends 2 and 4", hand: tiles(6, [2]int{2, 4}), want: 0},
		{name: "spinner 5-5", hand: tiles(6, [2]int{5, 5}), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := append(tt.hand, tileOf(6, 0, 0))
			s := newTestState(AllFives, rules, [][]Tile{hand, tiles(6, [2]int{1, 1})}, tiles(6, [2]int{6, 6}))
			next, deltas, err := Apply(s, PlaceMove(0, tt.hand[0].ID, OpeningEnd))
			require.NoError(t, err)
			require.Equal(t, tt.want, next.RoundScores[0])
			require.Equal(t, tt.want, next.MatchScores[0])
			if tt.want == 0 {
				require.Empty(t, deltas)
			} else {
				require.Equal(t, []ScoreDelta{{Seat: 0, Points: tt.want, Reason: ScorePlaced}}, deltas)
			}
		})
	}

	t.Run("score after the opening", func(t *testing.T) {
		s := newTestState(AllFives, rules, [][]Tile{tiles(6, [2]int{5, 5}, [2]int{1, 2}), tiles(6, [2]int{5, 0}, [2]int{3, 3})}, tiles(6, [2]int{6, 6}))
		s, _, err := Apply(s, PlaceMove(0, tileOf(6, 5, 5).ID, OpeningEnd))
		require.NoError(t, err)
		s, deltas, err := Apply(s, PlaceMove(1, tileOf(6, 0, 5).ID, EndRef{Branch: 0, Value: 5}))
		require.NoError(t, err)
		require.Equal(t, []ScoreDelta{{Seat: 1, Points: 5, Reason: ScorePlaced}}, deltas)
		require.Equal(t, []int{10, 5}, s.MatchScores)
	})
}

func TestApplyDomination(t *testing.T) {
	rules := StrictRules(Block)
	s := newTestState(Block, rules, [][]Tile{tiles(6, [2]int{3, 4}), tiles(6, [2]int{0, 0}, [2]int{1, 1})}, nil)
	s.Board = chain{}.open(rules, tileOf(6, 4, 6))

	next, deltas, err := Apply(s, PlaceMove(0, tileOf(6, 3, 4).ID, EndRef{Branch: 0, Value: 4}))
	require.NoError(t, err)
	require.Equal(t, &Terminal{Kind: TerminalDomination, Winner: 0}, next.Terminal)
	require.Equal(t, []ScoreDelta{{Seat: 0, Points: 2, Reason: ScoreDomination}}, deltas)
	require.Equal(t, PhaseRoundOver, next.Phase)

	_, _, err = Apply(next, PassMove(1))
	require.ErrorIs(t, err, ErrInvalidPhaseTransition)
}

func TestApplyBlockedRound(t *testing.T) {
	rules := StrictRules(Block)
	s := newTestState(Block, rules, [][]Tile{
		tiles(6, [2]int{1, 1}, [2]int{2, 2}, [2]int{4, 6}),
		tiles(6, [2]int{0, 0}),
	}, nil)
	s.Board = chain{}.open(rules, tileOf(6, 3, 4))

	next, deltas, err := Apply(s, PlaceMove(0, tileOf(6, 4, 6).ID, EndRef{Branch: 1, Value: 4}))
	require.NoError(t, err)
	require.Equal(t, &Terminal{Kind: TerminalBlocked, Winner: 1}, next.Terminal)
	require.Equal(t, []ScoreDelta{{Seat: 1, Points: 6, Reason: ScoreBlocked}}, deltas)
	require.Equal(t, []int{0, 6}, next.MatchScores)
}

func TestApplyForfeit(t *testing.T) {
	rules := StrictRules(Block)
	s := newTestState(Block, rules, [][]Tile{tiles(6, [2]int{3, 4}), tiles(6, [2]int{5, 5}, [2]int{1, 2})}, nil)

	next, deltas, err := Apply(s, ResignMove(1))
	require.NoError(t, err)
	require.Equal(t, &Terminal{Kind: TerminalForfeit, Winner: 0}, next.Terminal)
	require.Equal(t, []ScoreDelta{{Seat: 0, Points: 13, Reason: ScoreForfeit}}, deltas)
	require.Equal(t, PhaseMatchOver, next.Phase)
}

func TestApplyTimeout(t *testing.T) {
	rules := StrictRules(Block)
	s := newTestState(Block, rules, [][]Tile{tiles(6, [2]int{3, 4}, [2]int{1, 1}), tiles(6, [2]int{5, 5}, [2]int{4, 2})}, nil)
	s.Board = chain{}.open(rules, tileOf(6, 4, 6))

	next, deltas, err := Apply(s, TimeoutMove(0))
	require.NoError(t, err)
	require.Empty(t, deltas)
	require.Equal(t, 1, next.Turn)
	require.Equal(t, 1, next.Players[0].ConsecutivePasses)
	require.Equal(t, 0, next.PassStreak, "a timeout with a playable tile does not count toward a block")
	require.Equal(t, []HistoryEntry{{Seq: 1, Move: TimeoutMove(0)}}, next.History)
}

func TestMexicanTrainOwnership(t *testing.T) {
	rules := StrictRules(MexicanTrain)
	board, rest := mexicanTrain{}.prepare(rules, 2, 0, NewTileSet(9))
	require.Len(t, rest, 54)
	require.Equal(t, "9-9", board.Root.String())

	s := newTestState(MexicanTrain, rules, [][]Tile{
		tiles(9, [2]int{1, 2}, [2]int{3, 6}),
		tiles(9, [2]int{9, 3}, [2]int{4, 5}),
	}, nil)
	s.Board = board

	require.ErrorIs(t, s.Board.Accessible(1, 0), ErrIllegalBranch)
	require.Equal(t, []EndRef{{Branch: 1, Value: 9}, {Branch: 2, Value: 9}}, s.Board.OpenEnds(1))

	s, _, err := Apply(s, PassMove(0))
	require.NoError(t, err)
	require.True(t, s.Board.Branches[0].Public, "a seat that cannot play opens its train")
	require.Nil(t, s.Terminal)
	require.Len(t, s.Board.OpenEnds(1), 3)

	s, _, err = Apply(s, PlaceMove(1, tileOf(9, 3, 9).ID, EndRef{Branch: 0, Value: 9}))
	require.NoError(t, err)
	require.True(t, s.Board.Branches[0].Public)

	s, _, err = Apply(s, PlaceMove(0, tileOf(9, 3, 6).ID, EndRef{Branch: 0, Value: 3}))
	require.NoError(t, err)
	require.False(t, s.Board.Branches[0].Public, "playing on your own train closes it again")
	require.ErrorIs(t, s.Board.Accessible(1, 0), ErrIllegalBranch)
	require.Equal(t, []int{1, 2, 3}, []int{s.History[0].Seq, s.History[1].Seq, s.History[2].Seq})
}

func TestDoubleExtraTurn(t *testing.T) {
	for _, tt := range []struct {
		name  string
		rules RuleSet
		turn  int
	}{
		{name: "strict", rules: StrictRules(MexicanTrain), turn: 0},
		{name: "lenient", rules: LenientRules(MexicanTrain), turn: 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			board, _ := mexicanTrain{}.prepare(tt.rules, 2, 0, NewTileSet(9))
			board, err := board.Place(tileOf(9, 9, 4), EndRef{Branch: 0, Value: 9})
			require.NoError(t, err)

			s := newTestState(MexicanTrain, tt.rules, [][]Tile{tiles(9, [2]int{4, 4}, [2]int{0, 1}), tiles(9, [2]int{2, 3})}, nil)
			s.Board = board
			next, _, err := Apply(s, PlaceMove(0, tileOf(9, 4, 4).ID, EndRef{Branch: 0, Value: 4}))
			require.NoError(t, err)
			require.Equal(t, tt.turn, next.Turn)
		})
	}
}

// playRound drives s to the end of its round with random legal moves, checking
// the engine invariants after every transition.
func playRound(t *testing.T, s *State, rng *rand.Rand) *State {
	t.Helper()
	for step := 0; s.Phase == PhaseAwaitingMove; step++ {
		require.Less(t, step, 2000, "round did not terminate")
		moves := LegalMoves(s, s.Turn)
		require.NotEmpty(t, moves)
		m := moves[rng.Intn(len(moves))]

		next, _, err := Apply(s, m)
		require.NoError(t, err, "legal move %s rejected", m)
		requireInvariants(t, next)
		s = next
	}
	return s
}

func requireInvariants(t *testing.T, s *State) {
	t.Helper()
	require.Equal(t, SetSize(s.Rules.MaxPip), s.TileCount(), "tiles must be conserved")

	seen := make(map[int]bool)
	mark := func(tiles []Tile) {
		for _, tile := range tiles {
			require.False(t, seen[tile.ID], "tile %s appears twice", tile)
			seen[tile.ID] = true
		}
	}
	for _, p := range s.Players {
		mark(p.Hand)
	}
	mark(s.Board.Tiles())
	mark(s.Boneyard)

	for i, br := range s.Board.Branches {
		pip := br.Anchor
		for _, pl := range br.Placements {
			other, ok := pl.Tile.Other(pip)
			require.True(t, ok, "branch %d: %s does not match %d", i, pl.Tile, pip)
			require.Equal(t, other, pl.Exposed)
			pip = pl.Exposed
		}
		require.Equal(t, pip, br.Tail())
	}

	for seat, score := range s.MatchScores {
		require.GreaterOrEqual(t, score, 0, "seat %d", seat)
	}
	for i, entry := range s.History {
		require.Equal(t, i+1, entry.Seq)
	}
}

func TestRandomRoundsKeepInvariantsAndReplay(t *testing.T) {
	presets := map[string]func(VariantKind) RuleSet{"strict": StrictRules, "lenient": LenientRules}
	for _, kind := range Variants {
		for name, preset := range presets {
			for players := 2; players <= 3; players++ {
				t.Run(fmt.Sprintf("%s/%s/%d", kind, name, players), func(t *testing.T) {
					rng := rand.New(rand.NewSource(uint64(players) * 31))
					initial, err := NewMatch(kind, preset(kind), seatPlayers(players), rng)
					require.NoError(t, err)

					final := playRound(t, initial, rng)
					require.NotNil(t, final.Terminal)
					require.Contains(t, []Phase{PhaseRoundOver, PhaseMatchOver}, final.Phase)

					replayed, err := Replay(initial, final.History)
					require.NoError(t, err)
					require.Equal(t, NewSnapshot(final, 0), NewSnapshot(replayed, 0))
					require.Equal(t, final, replayed)
				})
			}
		}
	}
}

func TestMexicanTrainFullMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	s, err := NewMatch(MexicanTrain, StrictRules(MexicanTrain), seatPlayers(3), rng)
	require.NoError(t, err)

	rounds := 0
	for s.Phase != PhaseMatchOver {
		require.Equal(t, 9-rounds, s.Board.Root.Left)
		s = playRound(t, s, rng)
		rounds++
		if s.Phase == PhaseRoundOver {
			s, err = s.NextRound(rng)
			require.NoError(t, err)
		}
	}
	require.Equal(t, 10, rounds)
	if leader := MatchLeader(s); leader >= 0 {
		for _, score := range s.MatchScores {
			require.LessOrEqual(t, s.MatchScores[leader], score, "low score wins Mexican Train")
		}
	}
}

func TestReplayRejectsGaps(t *testing.T) {
	s, err := NewMatch(Block, StrictRules(Block), seatPlayers(2), rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	_, err = Replay(s, []HistoryEntry{{Seq: 2, Move: PassMove(s.Turn)}})
	require.Error(t, err)
}
