package bot

import (
	"errors"
	"fmt"
	"sort"

	"domino/internal/domain"

	botinternal "domino/internal/bot/internal"
)

// SkillLevel controls how much the advisor explains and how closely an Agent follows its advice.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// ParseSkill maps a wire value to a SkillLevel. Unknown values fall back to intermediate.
func ParseSkill(s string) SkillLevel {
	switch SkillLevel(s) {
	case SkillBeginner, SkillIntermediate, SkillExpert:
		return SkillLevel(s)
	case "easy":
		return SkillBeginner
	case "hard":
		return SkillExpert
	default:
		return SkillIntermediate
	}
}

// MaxAlternates caps the alternates carried by a Hint.
const MaxAlternates = 3

// ErrNoMoves is returned when the seat has nothing legal to do.
var ErrNoMoves = errors.New("no legal moves")

// Factors re-exports the per-move factor breakdown.
type Factors = botinternal.Factors

// Suggestion is one ranked candidate move.
type Suggestion struct {
	Move    domain.Move `json:"move"`
	Total   float64     `json:"total"`
	Factors Factors     `json:"factors"`
}

// Hint is the advisor's answer for a seat.
type Hint struct {
	Best       Suggestion   `json:"best"`
	Alternates []Suggestion `json:"alternates"`
	Reasoning  []string     `json:"reasoning"`
	Confidence int          `json:"confidence"`
	Skill      SkillLevel   `json:"skill"`
}

// Advisor ranks legal moves. It only reads the state it is given.
type Advisor struct {
	Tuning Tuning
}

// NewAdvisor returns an advisor using DefaultTuning.
func NewAdvisor() *Advisor {
	return &Advisor{Tuning: DefaultTuning}
}

// Rank scores every legal move for seat and orders them best first.
func (a *Advisor) Rank(s *domain.State, seat int) ([]Suggestion, error) {
	if s == nil {
		return nil, fmt.Errorf("rank: %w", domain.ErrInvalidPhaseTransition)
	}
	if s.Phase != domain.PhaseAwaitingMove {
		return nil, domain.NewRuleError(domain.ReasonInvalidPhase, "cannot advise in phase %s", s.Phase)
	}
	if _, err := s.Player(seat); err != nil {
		return nil, err
	}
	if seat != s.Turn {
		return nil, domain.NewRuleError(domain.ReasonNotYourTurn, "seat %d, turn %d", seat, s.Turn)
	}

	moves := domain.LegalMoves(s, seat)
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}

	scored := botinternal.BuildScoredMoves(s, seat, moves, a.Tuning.ForVariant(s.Variant))
	if len(scored) == 0 {
		return nil, ErrNoMoves
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Total != scored[j].Total {
			return scored[i].Total > scored[j].Total
		}
		return scored[i].Factors.Risk < scored[j].Factors.Risk
	})

	out := make([]Suggestion, len(scored))
	for i, sm := range scored {
		out[i] = Suggestion{Move: sm.Move, Total: sm.Total, Factors: sm.Factors}
	}
	return out, nil
}

// Advise returns the best move for seat with alternates and reasoning sized to skill.
func (a *Advisor) Advise(s *domain.State, seat int, skill SkillLevel) (Hint, error) {
	ranked, err := a.Rank(s, seat)
	if err != nil {
		return Hint{}, err
	}

	hint := Hint{
		Best:       ranked[0],
		Confidence: Confidence(ranked),
		Skill:      skill,
		Alternates: []Suggestion{},
	}
	for i := 1; i < len(ranked) && len(hint.Alternates) < MaxAlternates; i++ {
		hint.Alternates = append(hint.Alternates, ranked[i])
	}
	hint.Reasoning = Explain(ranked[0], skill)
	return hint, nil
}

// Confidence grows with the gap between the two best totals.
func Confidence(ranked []Suggestion) int {
	if len(ranked) == 0 {
		return 0
	}
	if len(ranked) == 1 {
		return 100
	}
	gap := ranked[0].Total - ranked[1].Total
	c := 50 + int(2*gap)
	if c > 100 {
		return 100
	}
	if c < 0 {
		return 0
	}
	return c
}
