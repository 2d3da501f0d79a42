package bot

import (
	"golang.org/x/exp/rand"

	"domino/internal/domain"
)

// SecondBestRate is how often an intermediate bot settles for the runner-up move.
const SecondBestRate = 0.25

// BeginnerPool is how many of the top moves a beginner picks from.
const BeginnerPool = 3

// NewBrain creates a brain whose play follows the advisor as closely as skill allows.
func NewBrain(skill SkillLevel, rng *rand.Rand) Brain {
	return &advisedBrain{
		advisor: NewAdvisor(),
		skill:   skill,
		rng:     rng,
	}
}

type advisedBrain struct {
	advisor *Advisor
	skill   SkillLevel
	rng     *rand.Rand
}

func (b *advisedBrain) ChooseMove(s *domain.State, seat int) (domain.Move, error) {
	ranked, err := b.advisor.Rank(s, seat)
	if err != nil {
		return domain.Move{}, err
	}
	return ranked[b.pick(len(ranked))].Move, nil
}

// pick returns the index of the ranked move to play.
func (b *advisedBrain) pick(n int) int {
	if n <= 1 || b.rng == nil {
		return 0
	}
	switch b.skill {
	case SkillBeginner:
		pool := BeginnerPool
		if n < pool {
			pool = n
		}
		return b.rng.Intn(pool)
	case SkillIntermediate:
		if b.rng.Float64() < SecondBestRate {
			return 1
		}
		return 0
	default:
		return 0
	}
}
