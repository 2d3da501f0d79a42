package domain

import "fmt"

// VariantKind names a supported rule family.
type VariantKind string

const (
	AllFives     VariantKind = "all_fives"
	Block        VariantKind = "block"
	Cuban        VariantKind = "cuban"
	ChickenFoot  VariantKind = "chicken_foot"
	MexicanTrain VariantKind = "mexican_train"
)

// Variants lists every supported variant in a stable order.
var Variants = []VariantKind{AllFives, Block, Cuban, ChickenFoot, MexicanTrain}

// OpeningRule constrains the very first tile of a round.
type OpeningRule string

const (
	OpenAny           OpeningRule = "any"
	OpenAnyDouble     OpeningRule = "any_double"
	OpenHighestDouble OpeningRule = "highest_double"
)

// SpinnerRule controls how the four arms of an opening double become playable.
type SpinnerRule string

const (
	// SpinnerNone lays every opening tile as a plain two-ended chain.
	SpinnerNone SpinnerRule = "none"
	// SpinnerFlankFirst opens the two flank arms once both primary arms hold a tile.
	SpinnerFlankFirst SpinnerRule = "flank_first"
	// SpinnerCoverAll requires every arm to hold a tile before any arm grows further.
	SpinnerCoverAll SpinnerRule = "cover_all"
	// SpinnerOpen makes all four arms playable immediately.
	SpinnerOpen SpinnerRule = "open"
)

// TiePolicy decides blocked rounds where several hands share the lowest pip count.
type TiePolicy string

const (
	TieNoScore TiePolicy = "none"
	TieSplit   TiePolicy = "split"
)

// RuleSet carries every tunable rule parameter of a variant.
type RuleSet struct {
	MaxPip          int         `json:"max_pip" mapstructure:"max_pip"`
	HandSize        int         `json:"hand_size" mapstructure:"hand_size"`
	Opening         OpeningRule `json:"opening" mapstructure:"opening"`
	Spinner         SpinnerRule `json:"spinner" mapstructure:"spinner"`
	BranchCap       int         `json:"branch_cap" mapstructure:"branch_cap"`
	AllowDraw       bool        `json:"allow_draw" mapstructure:"allow_draw"`
	DrawLimit       int         `json:"draw_limit" mapstructure:"draw_limit"` // 0 draws until a tile fits
	DoubleExtraTurn bool        `json:"double_extra_turn" mapstructure:"double_extra_turn"`
	RoundToFive     bool        `json:"round_to_five" mapstructure:"round_to_five"`
	Tie             TiePolicy   `json:"tie" mapstructure:"tie"`
	Rounds          int         `json:"rounds" mapstructure:"rounds"`
	TargetScore     int         `json:"target_score" mapstructure:"target_score"`
	LowScoreWins    bool        `json:"low_score_wins" mapstructure:"low_score_wins"`
}

// DefaultRules returns the tournament conventions for kind. They are the strict preset.
func DefaultRules(kind VariantKind) RuleSet {
	return StrictRules(kind)
}

// StrictRules returns the tournament preset for kind.
func StrictRules(kind VariantKind) RuleSet {
	switch kind {
	case AllFives:
		return RuleSet{
			MaxPip: 6, HandSize: 7, Opening: OpenAny, Spinner: SpinnerFlankFirst,
			AllowDraw: true, RoundToFive: true, Tie: TieNoScore, TargetScore: 150,
		}
	case Block:
		return RuleSet{
			MaxPip: 6, HandSize: 7, Opening: OpenAny, Spinner: SpinnerNone,
			Tie: TieNoScore, TargetScore: 100,
		}
	case Cuban:
		return RuleSet{
			MaxPip: 9, HandSize: 10, Opening: OpenAny, Spinner: SpinnerCoverAll,
			Tie: TieNoScore, TargetScore: 100,
		}
	case ChickenFoot:
		return RuleSet{
			MaxPip: 6, HandSize: 7, Opening: OpenHighestDouble, Spinner: SpinnerCoverAll,
			BranchCap: 4, AllowDraw: true, DrawLimit: 1, Tie: TieNoScore, Rounds: 1,
		}
	case MexicanTrain:
		return RuleSet{
			MaxPip: 9, HandSize: 10, Opening: OpenAny, Spinner: SpinnerNone,
			AllowDraw: true, DrawLimit: 1, DoubleExtraTurn: true, Tie: TieNoScore,
			Rounds: 10, LowScoreWins: true,
		}
	default:
		return RuleSet{MaxPip: DefaultMaxPip, HandSize: 7, Opening: OpenAny, Spinner: SpinnerNone, Rounds: 1}
	}
}

// LenientRules relaxes the branch and draw constraints of the strict preset.
func LenientRules(kind VariantKind) RuleSet {
	r := StrictRules(kind)
	switch kind {
	case Cuban:
		r.Spinner = SpinnerFlankFirst
		r.Tie = TieSplit
	case ChickenFoot:
		r.Spinner = SpinnerOpen
		r.Opening = OpenAnyDouble
		r.DrawLimit = 0
	case MexicanTrain:
		r.DoubleExtraTurn = false
		r.DrawLimit = 0
	case Block:
		r.Tie = TieSplit
	case AllFives:
		r.RoundToFive = false
	}
	return r
}

// Validate reports rule combinations the engine cannot play.
func (r RuleSet) Validate() error {
	if r.MaxPip < 1 || r.MaxPip > 18 {
		return fmt.Errorf("max pip %d out of range", r.MaxPip)
	}
	if r.HandSize < 1 {
		return fmt.Errorf("hand size %d must be positive", r.HandSize)
	}
	if r.BranchCap < 0 || r.DrawLimit < 0 || r.Rounds < 0 || r.TargetScore < 0 {
		return fmt.Errorf("negative rule parameter")
	}
	switch r.Opening {
	case OpenAny, OpenAnyDouble, OpenHighestDouble:
	default:
		return fmt.Errorf("unknown opening rule %q", r.Opening)
	}
	switch r.Spinner {
	case SpinnerNone, SpinnerFlankFirst, SpinnerCoverAll, SpinnerOpen:
	default:
		return fmt.Errorf("unknown spinner rule %q", r.Spinner)
	}
	switch r.Tie {
	case TieNoScore, TieSplit:
	default:
		return fmt.Errorf("unknown tie policy %q", r.Tie)
	}
	return nil
}
