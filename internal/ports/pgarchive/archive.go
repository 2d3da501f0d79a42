// Package pgarchive writes finished matches to Postgres.
package pgarchive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"domino/internal/ports"
)

// Schema creates the archive table.
const Schema = `
CREATE TABLE IF NOT EXISTS domino_matches (
	session_id  TEXT PRIMARY KEY,
	variant     TEXT NOT NULL,
	player_ids  TEXT[] NOT NULL,
	scores      INTEGER[] NOT NULL,
	winner_id   TEXT NOT NULL,
	rounds      INTEGER NOT NULL,
	moves       INTEGER NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

const insertMatch = `
	INSERT INTO domino_matches (session_id, variant, player_ids, scores, winner_id, rounds, moves, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (session_id) DO NOTHING
`

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Archive is a ports.MatchArchive over Postgres.
type Archive struct {
	db Execer
}

// New wraps a connection or pool.
func New(db Execer) *Archive {
	return &Archive{db: db}
}

// Open connects a pool to dsn and makes sure the table exists.
func Open(ctx context.Context, dsn string) (*Archive, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create archive table: %w", err)
	}
	return New(pool), pool, nil
}

func (a *Archive) Archive(ctx context.Context, r ports.MatchRecord) error {
	scores := make([]int32, len(r.Scores))
	for i, s := range r.Scores {
		scores[i] = int32(s)
	}
	_, err := a.db.Exec(ctx, insertMatch,
		r.SessionID,
		r.Variant,
		r.PlayerIDs,
		scores,
		r.WinnerID,
		r.Rounds,
		r.Moves,
		r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("archive match %s: %w", r.SessionID, err)
	}
	return nil
}
