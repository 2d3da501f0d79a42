package domain

// ScoreReason explains where a score delta came from.
type ScoreReason string

const (
	ScorePlaced     ScoreReason = "placement"
	ScoreDomination ScoreReason = "domination"
	ScoreBlocked    ScoreReason = "blocked"
	ScoreForfeit    ScoreReason = "forfeit"
	ScorePenalty    ScoreReason = "penalty"
)

// ScoreDelta is a change to one seat's score. Points are never negative.
type ScoreDelta struct {
	Seat   int         `json:"seat"`
	Points int         `json:"points"`
	Reason ScoreReason `json:"reason"`
}

// EndSum adds up the ends that count in All Fives. On a spinner the flank arms
// only count once a tile covers them.
func EndSum(b Board) int {
	if b.Empty() {
		return 0
	}
	sum := 0
	for _, br := range b.Branches {
		if br.Flank && !br.Covered() {
			continue
		}
		sum += br.Tail()
	}
	return sum
}

// FivesScore returns the All Fives award for the current ends: their sum when it is a positive multiple of five.
func FivesScore(b Board) int {
	if sum := EndSum(b); sum > 0 && sum%5 == 0 {
		return sum
	}
	return 0
}

// RoundToFive rounds points to the nearest multiple of five, halves up.
func RoundToFive(points int) int {
	return (points + 2) / 5 * 5
}

// settleByPips awards the round winner the pips left in the other hands. With
// difference set, a blocked winner only scores the margin over its own hand.
func settleByPips(s *State, t Terminal, roundFive, difference bool) []ScoreDelta {
	reason := ScoreDomination
	switch t.Kind {
	case TerminalBlocked:
		reason = ScoreBlocked
	case TerminalForfeit:
		reason = ScoreForfeit
	}

	finish := func(seat, pts int) []ScoreDelta {
		if roundFive {
			pts = RoundToFive(pts)
		}
		if pts <= 0 {
			return nil
		}
		return []ScoreDelta{{Seat: seat, Points: pts, Reason: reason}}
	}

	if t.Winner >= 0 {
		pts := 0
		for seat, p := range s.Players {
			if seat != t.Winner {
				pts += PipSum(p.Hand)
			}
		}
		if difference && t.Kind == TerminalBlocked {
			pts -= PipSum(s.Players[t.Winner].Hand)
		}
		return finish(t.Winner, pts)
	}

	if t.Kind != TerminalBlocked || s.Rules.Tie != TieSplit {
		return nil
	}
	tied := lowestHands(s)
	isTied := make(map[int]bool, len(tied))
	for _, seat := range tied {
		isTied[seat] = true
	}
	pool := 0
	for seat, p := range s.Players {
		if !isTied[seat] {
			pool += PipSum(p.Hand)
		}
	}
	var deltas []ScoreDelta
	for _, seat := range tied {
		deltas = append(deltas, finish(seat, pool/len(tied))...)
	}
	return deltas
}

// lowestHands returns the active seats sharing the lowest pip count, in seat order.
func lowestHands(s *State) []int {
	var seats []int
	low := 0
	for _, seat := range s.ActiveSeats() {
		pips := PipSum(s.Players[seat].Hand)
		switch {
		case len(seats) == 0 || pips < low:
			seats, low = []int{seat}, pips
		case pips == low:
			seats = append(seats, seat)
		}
	}
	return seats
}

// MatchLeader returns the seat currently winning the match, or -1 on a tie.
func MatchLeader(s *State) int {
	leader, tie := -1, false
	for _, seat := range s.ActiveSeats() {
		score := s.MatchScores[seat]
		if leader < 0 {
			leader = seat
			continue
		}
		best := s.MatchScores[leader]
		better := score > best
		if s.Rules.LowScoreWins {
			better = score < best
		}
		switch {
		case better:
			leader, tie = seat, false
		case score == best:
			tie = true
		}
	}
	if tie {
		return -1
	}
	return leader
}

func applyDeltas(s *State, deltas []ScoreDelta) {
	for _, d := range deltas {
		s.RoundScores[d.Seat] += d.Points
		s.MatchScores[d.Seat] += d.Points
	}
}
