package bot

import (
	"fmt"
	"sort"

	"domino/internal/domain"
)

// Thresholds a factor must reach before the advisor mentions it.
const (
	immediateNote = 5.0
	futureNote    = 2.0
	blockingNote  = 1.5
	setupNote     = 1.0
	riskNote      = 1.0
	endgameNote   = 1.0
)

type note struct {
	weight float64
	text   string
}

// Explain turns the factors of s into reasoning lines. Beginners get the
// strongest line, intermediate players up to three, experts every factor with its value.
func Explain(s Suggestion, skill SkillLevel) []string {
	switch s.Move.Kind {
	case domain.MoveDraw:
		return []string{"No tile fits an open end, draw from the boneyard."}
	case domain.MovePass:
		return []string{"No tile fits and the boneyard is closed, pass."}
	}

	if skill == SkillExpert {
		f := s.Factors
		return []string{
			fmt.Sprintf("immediate %.2f", f.Immediate),
			fmt.Sprintf("future %.2f", f.Future),
			fmt.Sprintf("blocking %.2f", f.Blocking),
			fmt.Sprintf("setup %.2f", f.Setup),
			fmt.Sprintf("risk %.2f", f.Risk),
			fmt.Sprintf("endgame %.2f", f.Endgame),
			fmt.Sprintf("total %.2f", s.Total),
		}
	}

	notes := notesFor(s.Factors)
	if len(notes) == 0 {
		return []string{"Plays a tile while keeping the hand balanced."}
	}
	limit := 3
	if skill == SkillBeginner {
		limit = 1
	}
	if len(notes) > limit {
		notes = notes[:limit]
	}
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = n.text
	}
	return lines
}

// notesFor lists the factors past their threshold, strongest first.
func notesFor(f Factors) []note {
	var notes []note
	if f.Immediate >= immediateNote {
		notes = append(notes, note{f.Immediate, fmt.Sprintf("Scores %.0f points right away.", f.Immediate)})
	}
	if f.Endgame >= endgameNote {
		notes = append(notes, note{f.Endgame, "Sheds weight before the round ends."})
	}
	if f.Future >= futureNote {
		notes = append(notes, note{f.Future, fmt.Sprintf("Leaves %.0f follow-up plays on the board.", f.Future)})
	}
	if f.Blocking >= blockingNote {
		notes = append(notes, note{f.Blocking, "Makes the ends hard for opponents to match."})
	}
	if f.Setup >= setupNote {
		notes = append(notes, note{f.Setup, "Keeps the hand flexible."})
	}
	if f.Risk >= riskNote {
		notes = append(notes, note{-f.Risk, "Carries some risk of stranding a tile."})
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].weight > notes[j].weight })
	return notes
}
