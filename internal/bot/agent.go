package bot

import (
	"golang.org/x/exp/rand"

	"domino/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Skill    SkillLevel
	Strategy Brain
}

// NewAgent builds an agent for a provisioned bot. The skill comes from the bot's
// identity and falls back to intermediate for unknown ids.
func NewAgent(id string, seed uint64) *Agent {
	skill := SkillIntermediate
	name := id
	if identity, ok := GetBotConfig(id); ok {
		skill = ParseSkill(identity.Difficulty)
		name = identity.DisplayName
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Skill:    skill,
		Strategy: NewBrain(skill, rand.New(rand.NewSource(seed))),
	}
}

// Play asks the agent to choose its move based on the current game state.
func (a *Agent) Play(s *domain.State) (domain.Move, error) {
	seat, ok := s.SeatOf(a.ID)
	if !ok {
		// Agent is not part of this game
		return domain.Move{}, domain.NewRuleError(domain.ReasonUnknownPlayer, "agent %s", a.ID)
	}
	return a.PlayAtSeat(s, seat)
}

// PlayAtSeat chooses a move for an explicit seat. A strategy failure degrades
// to the first legal move so the table never stalls on a bot.
func (a *Agent) PlayAtSeat(s *domain.State, seat int) (domain.Move, error) {
	move, err := a.Strategy.ChooseMove(s, seat)
	if err == nil {
		return move, nil
	}
	if moves := domain.LegalMoves(s, seat); len(moves) > 0 && seat == s.Turn {
		return moves[0], nil
	}
	return domain.Move{}, err
}
