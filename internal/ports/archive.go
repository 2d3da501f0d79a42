package ports

import (
	"context"
	"time"
)

// MatchRecord is the summary kept once a match is over.
type MatchRecord struct {
	SessionID  string
	Variant    string
	PlayerIDs  []string
	Scores     []int
	WinnerID   string
	Rounds     int
	Moves      int
	FinishedAt time.Time
}

// MatchArchive stores finished matches.
type MatchArchive interface {
	Archive(ctx context.Context, record MatchRecord) error
}
