package domain

import (
	"errors"
	"fmt"
)

// Reason classifies why a move was rejected.
type Reason string

const (
	ReasonNotYourTurn     Reason = "not_your_turn"
	ReasonTileNotInHand   Reason = "tile_not_in_hand"
	ReasonEndNotOpen      Reason = "end_not_open"
	ReasonPipMismatch     Reason = "pip_mismatch"
	ReasonIllegalBranch   Reason = "illegal_branch"
	ReasonDrawNotAllowed  Reason = "draw_not_allowed"
	ReasonPassNotAllowed  Reason = "pass_not_allowed"
	ReasonInvalidPhase    Reason = "invalid_phase_transition"
	ReasonUnknownPlayer   Reason = "unknown_player"
	ReasonUnsupportedMove Reason = "unsupported_move"
)

var (
	ErrNotYourTurn            = errors.New("not your turn")
	ErrTileNotInHand          = errors.New("tile not in hand")
	ErrEndNotOpen             = errors.New("end not open")
	ErrPipMismatch            = errors.New("pip mismatch")
	ErrIllegalBranch          = errors.New("illegal branch")
	ErrDrawNotAllowed         = errors.New("draw not allowed")
	ErrPassNotAllowed         = errors.New("pass not allowed")
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	ErrUnknownPlayer          = errors.New("player not found")
	ErrUnsupportedMove        = errors.New("unsupported move")
	ErrInsufficientTiles      = errors.New("insufficient tiles")
	ErrUnknownVariant         = errors.New("unknown variant")
	ErrTooFewPlayers          = errors.New("a match needs at least two players")
)

var reasonErrors = map[Reason]error{
	ReasonNotYourTurn:     ErrNotYourTurn,
	ReasonTileNotInHand:   ErrTileNotInHand,
	ReasonEndNotOpen:      ErrEndNotOpen,
	ReasonPipMismatch:     ErrPipMismatch,
	ReasonIllegalBranch:   ErrIllegalBranch,
	ReasonDrawNotAllowed:  ErrDrawNotAllowed,
	ReasonPassNotAllowed:  ErrPassNotAllowed,
	ReasonInvalidPhase:    ErrInvalidPhaseTransition,
	ReasonUnknownPlayer:   ErrUnknownPlayer,
	ReasonUnsupportedMove: ErrUnsupportedMove,
}

// RuleError is a recoverable rejection of a move. State is never modified when one is returned.
type RuleError struct {
	Reason Reason
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Is lets errors.Is match a RuleError against the sentinel for its reason.
func (e *RuleError) Is(target error) bool {
	return reasonErrors[e.Reason] == target
}

// NewRuleError builds a rejection for callers outside the engine that enforce the same rules.
func NewRuleError(reason Reason, format string, args ...any) *RuleError {
	return &RuleError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func reject(reason Reason, format string, args ...any) *RuleError {
	return NewRuleError(reason, format, args...)
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a rule rejection.
func ReasonOf(err error) Reason {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
