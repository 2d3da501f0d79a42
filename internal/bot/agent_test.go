package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"domino/internal/domain"
)

func fivesOpening() *domain.State {
	hand := []domain.Tile{tileOf(2, 4), tileOf(0, 5), tileOf(1, 2), tileOf(3, 4), tileOf(1, 6)}
	return stateWith(domain.AllFives, [][]domain.Tile{hand, {tileOf(0, 0), tileOf(1, 1)}},
		[]domain.Tile{tileOf(2, 2), tileOf(3, 3), tileOf(4, 4), tileOf(5, 5), tileOf(6, 6), tileOf(0, 1)})
}

func TestExpertAlwaysPlaysBest(t *testing.T) {
	s := fivesOpening()
	ranked, err := NewAdvisor().Rank(s, 0)
	require.NoError(t, err)

	brain := NewBrain(SkillExpert, rand.New(rand.NewSource(7)))
	for i := 0; i < 20; i++ {
		move, err := brain.ChooseMove(s, 0)
		require.NoError(t, err)
		require.Equal(t, ranked[0].Move, move)
	}
}

func TestSkillBoundsChoice(t *testing.T) {
	s := fivesOpening()
	ranked, err := NewAdvisor().Rank(s, 0)
	require.NoError(t, err)

	tests := []struct {
		skill SkillLevel
		pool  int
	}{
		{SkillBeginner, BeginnerPool},
		{SkillIntermediate, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.skill), func(t *testing.T) {
			brain := NewBrain(tt.skill, rand.New(rand.NewSource(42)))
			for i := 0; i < 50; i++ {
				move, err := brain.ChooseMove(s, 0)
				require.NoError(t, err)

				idx := -1
				for j, sg := range ranked {
					if sg.Move == move {
						idx = j
						break
					}
				}
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, tt.pool)
			}
		})
	}
}

func TestAgentPlaysLegalMovesToTheEnd(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	players := []domain.PlayerInfo{{ID: "bot-a", IsBot: true}, {ID: "bot-b", IsBot: true}}
	s, err := domain.NewMatch(domain.Block, domain.StrictRules(domain.Block), players, rng)
	require.NoError(t, err)

	agents := map[string]*Agent{
		"bot-a": NewAgent("bot-a", 1),
		"bot-b": NewAgent("bot-b", 2),
	}
	require.Equal(t, SkillIntermediate, agents["bot-a"].Skill)
	require.Equal(t, "bot-a", agents["bot-a"].Name)

	for steps := 0; s.Phase == domain.PhaseAwaitingMove; steps++ {
		require.Less(t, steps, 200)
		agent := agents[s.Players[s.Turn].ID]
		move, err := agent.Play(s)
		require.NoError(t, err)
		require.NoError(t, domain.IsLegal(s, move))

		s, _, err = domain.Apply(s, move)
		require.NoError(t, err)
	}
	require.NotNil(t, s.Terminal)
}

func TestAgentNotSeated(t *testing.T) {
	s := fivesOpening()
	_, err := NewAgent("stranger", 1).Play(s)
	require.ErrorIs(t, err, domain.ErrUnknownPlayer)
}
