package bot

import (
	"domino/internal/domain"
)

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	ChooseMove(s *domain.State, seat int) (domain.Move, error)
}
