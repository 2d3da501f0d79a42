package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckEnd(t *testing.T) {
	block := StrictRules(Block)
	fives := StrictRules(AllFives)

	tests := []struct {
		name  string
		build func() *State
		want  *Terminal
	}{
		{
			name: "play continues",
			build: func() *State {
				s := newTestState(Block, block, [][]Tile{tiles(6, [2]int{3, 1}), tiles(6, [2]int{0, 0})}, nil)
				s.Board = chain{}.open(block, tileOf(6, 3, 4))
				return s
			},
		},
		{
			name: "empty board is never blocked",
			build: func() *State {
				return newTestState(Block, block, [][]Tile{tiles(6, [2]int{3, 1}), tiles(6, [2]int{0, 0})}, nil)
			},
		},
		{
			name: "empty hand dominates",
			build: func() *State {
				s := newTestState(Block, block, [][]Tile{tiles(6, [2]int{3, 1}), {}}, nil)
				s.Board = chain{}.open(block, tileOf(6, 3, 4))
				return s
			},
			want: &Terminal{Kind: TerminalDomination, Winner: 1},
		},
		{
			name: "nobody can place",
			build: func() *State {
				s := newTestState(Block, block, [][]Tile{tiles(6, [2]int{1, 1}, [2]int{2, 2}), tiles(6, [2]int{0, 0})}, nil)
				s.Board = chain{}.open(block, tileOf(6, 3, 4))
				return s
			},
			want: &Terminal{Kind: TerminalBlocked, Winner: 1},
		},
		{
			name: "boneyard still helps",
			build: func() *State {
				s := newTestState(AllFives, fives, [][]Tile{tiles(6, [2]int{1, 1}), tiles(6, [2]int{0, 0})}, tiles(6, [2]int{3, 6}))
				s.Board = chain{}.open(fives, tileOf(6, 3, 4))
				s.PassStreak = 2
				return s
			},
		},
		{
			name: "full rotation of passes",
			build: func() *State {
				s := newTestState(AllFives, fives, [][]Tile{tiles(6, [2]int{1, 1}), tiles(6, [2]int{0, 3})}, nil)
				s.Board = chain{}.open(fives, tileOf(6, 3, 4))
				s.PassStreak = 2
				return s
			},
			want: &Terminal{Kind: TerminalBlocked, Winner: 0},
		},
		{
			name: "tied block has no winner",
			build: func() *State {
				s := newTestState(Block, block, [][]Tile{tiles(6, [2]int{1, 1}), tiles(6, [2]int{0, 2})}, nil)
				s.Board = chain{}.open(block, tileOf(6, 3, 4))
				return s
			},
			want: &Terminal{Kind: TerminalBlocked, Winner: -1},
		},
		{
			name: "last player standing",
			build: func() *State {
				s := newTestState(Block, block, [][]Tile{tiles(6, [2]int{1, 1}), tiles(6, [2]int{0, 2}), tiles(6, [2]int{5, 5})}, nil)
				s.Players[0].Resigned = true
				s.Players[2].Resigned = true
				return s
			},
			want: &Terminal{Kind: TerminalForfeit, Winner: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CheckEnd(tt.build()))
		})
	}
}

func TestPrivateTrainsDeferBlock(t *testing.T) {
	rules := StrictRules(MexicanTrain)
	board, _ := mexicanTrain{}.prepare(rules, 2, 0, NewTileSet(9))
	s := newTestState(MexicanTrain, rules, [][]Tile{tiles(9, [2]int{1, 2}), tiles(9, [2]int{3, 4})}, nil)
	s.Board = board

	require.Nil(t, CheckEnd(s), "a pass may still open a train")

	s.PassStreak = 2
	require.Equal(t, &Terminal{Kind: TerminalBlocked, Winner: 0}, CheckEnd(s))
}

func TestMatchComplete(t *testing.T) {
	tests := []struct {
		name   string
		kind   VariantKind
		round  int
		scores []int
		want   bool
	}{
		{name: "target not reached", kind: Block, scores: []int{40, 99}},
		{name: "target reached", kind: Block, scores: []int{40, 100}, want: true},
		{name: "more rounds to play", kind: MexicanTrain, round: 8, scores: []int{200, 300}},
		{name: "last round", kind: MexicanTrain, round: 9, scores: []int{0, 0}, want: true},
		{name: "single round", kind: ChickenFoot, scores: []int{0, 0}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(tt.kind, StrictRules(tt.kind), [][]Tile{nil, nil}, nil)
			s.Round = tt.round
			s.MatchScores = tt.scores
			require.Equal(t, tt.want, MatchComplete(s))
		})
	}
}
