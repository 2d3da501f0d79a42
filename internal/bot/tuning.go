package bot

import (
	"domino/internal/domain"

	botinternal "domino/internal/bot/internal"
)

// Tuning holds the factor weights used for each variant.
type Tuning struct {
	Variants map[domain.VariantKind]botinternal.Weights
	Fallback botinternal.Weights
}

// ForVariant returns the weights that match kind.
func (t Tuning) ForVariant(kind domain.VariantKind) botinternal.Weights {
	if w, ok := t.Variants[kind]; ok {
		return w
	}
	return t.Fallback
}

// DefaultTuning favours points in All Fives and hand shedding in the pip-count variants.
var DefaultTuning = Tuning{
	Variants: map[domain.VariantKind]botinternal.Weights{
		domain.AllFives: {
			Immediate: 3.0,
			Future:    1.0,
			Blocking:  0.8,
			Setup:     0.6,
			Risk:      0.7,
			Endgame:   1.2,
		},
		domain.Block: {
			Immediate: 0.5,
			Future:    1.5,
			Blocking:  1.2,
			Setup:     1.0,
			Risk:      0.9,
			Endgame:   1.6,
		},
		domain.Cuban: {
			Immediate: 0.6,
			Future:    1.4,
			Blocking:  1.1,
			Setup:     1.2,
			Risk:      0.9,
			Endgame:   1.5,
		},
		domain.ChickenFoot: {
			Immediate: 0.4,
			Future:    1.3,
			Blocking:  1.0,
			Setup:     1.5,
			Risk:      0.8,
			Endgame:   1.8,
		},
		domain.MexicanTrain: {
			Immediate: 0.3,
			Future:    1.2,
			Blocking:  0.9,
			Setup:     1.1,
			Risk:      1.0,
			Endgame:   2.0,
		},
	},
	Fallback: botinternal.Weights{
		Immediate: 1.0,
		Future:    1.0,
		Blocking:  1.0,
		Setup:     1.0,
		Risk:      1.0,
		Endgame:   1.0,
	},
}
