package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFivesScore(t *testing.T) {
	tests := []struct {
		name string
		root Tile
		want int
	}{
		{name: "2-3", root: tileOf(6, 2, 3), want: 5},
		{name: "2-4", root: tileOf(6, 2, 4), want: 0},
		{name: "0-0", root: tileOf(6, 0, 0), want: 0},
		{name: "4-6", root: tileOf(6, 4, 6), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := chain{}.open(StrictRules(AllFives), tt.root)
			if got := FivesScore(b); got != tt.want {
				t.Errorf("FivesScore(%s) = %d, want %d", tt.root, got, tt.want)
			}
		})
	}
}

func TestEndSumCountsFlanksOnceCovered(t *testing.T) {
	b := chain{}.open(StrictRules(AllFives), tileOf(6, 5, 5))
	require.Equal(t, 10, EndSum(b))

	var err error
	for i, tile := range []Tile{tileOf(6, 5, 1), tileOf(6, 5, 2)} {
		b, err = b.Place(tile, EndRef{Branch: i, Value: 5})
		require.NoError(t, err)
	}
	require.Equal(t, 3, EndSum(b))

	b, err = b.Place(tileOf(6, 5, 4), EndRef{Branch: 2, Value: 5})
	require.NoError(t, err)
	require.Equal(t, 7, EndSum(b))
}

func TestRoundToFive(t *testing.T) {
	for in, want := range map[int]int{0: 0, 2: 0, 3: 5, 12: 10, 13: 15, 25: 25} {
		require.Equal(t, want, RoundToFive(in), "RoundToFive(%d)", in)
	}
}

func TestScoreRoundByVariant(t *testing.T) {
	hands := [][]Tile{
		tiles(6, [2]int{1, 1}, [2]int{2, 2}),
		tiles(6, [2]int{0, 0}),
		tiles(6, [2]int{6, 5}),
	}

	tests := []struct {
		name     string
		kind     VariantKind
		rules    RuleSet
		terminal Terminal
		want     []ScoreDelta
	}{
		{
			name:     "block domination takes every other hand",
			kind:     Block,
			rules:    StrictRules(Block),
			terminal: Terminal{Kind: TerminalDomination, Winner: 1},
			want:     []ScoreDelta{{Seat: 1, Points: 17, Reason: ScoreDomination}},
		},
		{
			name:     "chicken foot going out",
			kind:     ChickenFoot,
			rules:    StrictRules(ChickenFoot),
			terminal: Terminal{Kind: TerminalDomination, Winner: 0},
			want:     []ScoreDelta{{Seat: 0, Points: 11, Reason: ScoreDomination}},
		},
		{
			name:     "all fives rounds to five",
			kind:     AllFives,
			rules:    StrictRules(AllFives),
			terminal: Terminal{Kind: TerminalDomination, Winner: 0},
			want:     []ScoreDelta{{Seat: 0, Points: 10, Reason: ScoreDomination}},
		},
		{
			name:     "all fives lenient keeps raw pips",
			kind:     AllFives,
			rules:    LenientRules(AllFives),
			terminal: Terminal{Kind: TerminalDomination, Winner: 0},
			want:     []ScoreDelta{{Seat: 0, Points: 11, Reason: ScoreDomination}},
		},
		{
			name:     "all fives blocked scores the margin",
			kind:     AllFives,
			rules:    StrictRules(AllFives),
			terminal: Terminal{Kind: TerminalBlocked, Winner: 1},
			want:     []ScoreDelta{{Seat: 1, Points: 15, Reason: ScoreBlocked}},
		},
		{
			name:     "cuban forfeit",
			kind:     Cuban,
			rules:    StrictRules(Cuban),
			terminal: Terminal{Kind: TerminalForfeit, Winner: 2},
			want:     []ScoreDelta{{Seat: 2, Points: 6, Reason: ScoreForfeit}},
		},
		{
			name:     "mexican train penalises every hand",
			kind:     MexicanTrain,
			rules:    StrictRules(MexicanTrain),
			terminal: Terminal{Kind: TerminalDomination, Winner: 1},
			want: []ScoreDelta{
				{Seat: 0, Points: 6, Reason: ScorePenalty},
				{Seat: 2, Points: 11, Reason: ScorePenalty},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := VariantFor(tt.kind)
			require.NoError(t, err)
			s := newTestState(tt.kind, tt.rules, hands, nil)
			require.Equal(t, tt.want, v.ScoreRound(s, tt.terminal))
		})
	}
}

func TestBlockedTiePolicy(t *testing.T) {
	hands := [][]Tile{
		tiles(6, [2]int{1, 2}),
		tiles(6, [2]int{0, 3}),
		tiles(6, [2]int{5, 6}),
	}
	tie := Terminal{Kind: TerminalBlocked, Winner: -1}

	strict := newTestState(Block, StrictRules(Block), hands, nil)
	require.Empty(t, block{}.ScoreRound(strict, tie))

	lenient := newTestState(Block, LenientRules(Block), hands, nil)
	require.Equal(t, []ScoreDelta{
		{Seat: 0, Points: 5, Reason: ScoreBlocked},
		{Seat: 1, Points: 5, Reason: ScoreBlocked},
	}, block{}.ScoreRound(lenient, tie))
}

func TestMatchLeader(t *testing.T) {
	s := newTestState(Block, StrictRules(Block), [][]Tile{nil, nil, nil}, nil)
	s.MatchScores = []int{30, 55, 10}
	require.Equal(t, 1, MatchLeader(s))

	s.Rules = StrictRules(MexicanTrain)
	require.Equal(t, 2, MatchLeader(s))

	s.MatchScores = []int{10, 55, 10}
	require.Equal(t, -1, MatchLeader(s))
}
