package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"domino/internal/bot"
	"domino/internal/domain"
	"domino/internal/ports"
	"domino/internal/ports/memstore"
)

type recordingPublisher struct {
	mu   sync.Mutex
	envs []ports.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, env ports.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, env)
	return nil
}

func (p *recordingPublisher) kinds() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int)
	for _, env := range p.envs {
		out[env.Kind]++
	}
	return out
}

type recordingArchive struct {
	records []ports.MatchRecord
}

func (a *recordingArchive) Archive(_ context.Context, r ports.MatchRecord) error {
	a.records = append(a.records, r)
	return nil
}

var fixedClock = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }

func twoPlayers() []domain.PlayerInfo {
	return []domain.PlayerInfo{{ID: "u1"}, {ID: "u2", IsBot: true}}
}

func TestStartMatchDealsHands(t *testing.T) {
	svc := NewService(WithRand(rand.New(rand.NewSource(42))), WithClock(fixedClock))

	session, evs, err := svc.StartMatch(context.Background(), domain.Block, domain.StrictRules(domain.Block), twoPlayers())
	require.NoError(t, err)
	require.Equal(t, domain.PhaseAwaitingMove, session.Phase())

	handEvents := 0
	for _, ev := range evs {
		if ev.Kind == EventHandDealt {
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			require.Len(t, payload.Hand, 7)
			require.Equal(t, []string{payload.UserID}, ev.Recipients)
		}
	}
	require.Equal(t, 2, handEvents)
	require.Equal(t, EventMatchStarted, evs[0].Kind)

	got, err := svc.Sessions().Get(session.ID)
	require.NoError(t, err)
	require.Same(t, session, got)
}

func TestStartMatchFailures(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(WithPublisher(pub))

	_, _, err := svc.StartMatch(context.Background(), domain.Block, domain.StrictRules(domain.Block), twoPlayers()[:1])
	require.ErrorIs(t, err, domain.ErrTooFewPlayers)

	rules := domain.StrictRules(domain.Block)
	rules.HandSize = 20
	_, _, err = svc.StartMatch(context.Background(), domain.Block, rules, twoPlayers())
	require.ErrorIs(t, err, domain.ErrInsufficientTiles)

	require.Zero(t, svc.Sessions().Len())
	require.Empty(t, pub.envs, "nothing is announced for a match that could not be dealt")
}

func TestSubmitMoveUnknownSession(t *testing.T) {
	svc := NewService()
	_, _, err := svc.SubmitMove(context.Background(), "nope", domain.PassMove(0))
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Hint("nope", "u1", bot.SkillExpert)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitMovePublishesAndRecords(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	pub := &recordingPublisher{}
	svc := NewService(
		WithRand(rand.New(rand.NewSource(5))),
		WithHistoryStore(store),
		WithPublisher(pub),
		WithClock(fixedClock),
	)

	session, _, err := svc.StartMatch(ctx, domain.AllFives, domain.StrictRules(domain.AllFives), twoPlayers())
	require.NoError(t, err)

	st := session.State()
	move := domain.LegalMoves(st, st.Turn)[0]
	res, evs, err := svc.SubmitMove(ctx, session.ID, move)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, EventMoveApplied, evs[0].Kind)

	_, entries, err := store.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.HistoryEntry{{Seq: 1, Move: move}}, entries)

	kinds := pub.kinds()
	require.Equal(t, 1, kinds[string(EventMatchStarted)])
	require.Equal(t, 1, kinds[string(EventMoveApplied)])
	require.Zero(t, kinds[string(EventHandDealt)], "private hands are never published")

	for _, env := range pub.envs {
		require.Equal(t, fixedClock(), env.At)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(env.Payload, &raw))
	}

	_, _, err = svc.SubmitMove(ctx, session.ID, move)
	require.Error(t, err)
	require.NotEqual(t, domain.Reason(""), domain.ReasonOf(err))
	_, entries, err = store.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "rejected moves are not recorded")
}

func TestHintForCurrentPlayer(t *testing.T) {
	svc := NewService(WithRand(rand.New(rand.NewSource(9))))
	session, _, err := svc.StartMatch(context.Background(), domain.AllFives, domain.StrictRules(domain.AllFives), twoPlayers())
	require.NoError(t, err)

	st := session.State()
	current := st.Players[st.Turn].ID
	hint, err := svc.Hint(session.ID, current, bot.SkillIntermediate)
	require.NoError(t, err)
	require.NoError(t, domain.IsLegal(st, hint.Best.Move))
	require.GreaterOrEqual(t, hint.Confidence, 50)

	_, err = svc.Hint(session.ID, "ghost", bot.SkillIntermediate)
	require.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestRestoreReplaysHistory(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(WithRand(rand.New(rand.NewSource(21))), WithHistoryStore(store))

	session, _, err := svc.StartMatch(ctx, domain.MexicanTrain, domain.StrictRules(domain.MexicanTrain), twoPlayers())
	require.NoError(t, err)

	brain := bot.NewBrain(bot.SkillExpert, nil)
	for i := 0; i < 8 && session.State().Phase == domain.PhaseAwaitingMove; i++ {
		st := session.State()
		move, err := brain.ChooseMove(st, st.Turn)
		require.NoError(t, err)
		_, _, err = svc.SubmitMove(ctx, session.ID, move)
		require.NoError(t, err)
	}

	restarted := NewService(WithRand(rand.New(rand.NewSource(99))), WithHistoryStore(store))
	_, err = restarted.Sessions().Get(session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	restored, err := restarted.Restore(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.State(), restored.State())
	require.Equal(t, session.Snapshot("u1"), restored.Snapshot("u1"))

	again, err := restarted.Restore(ctx, session.ID)
	require.NoError(t, err)
	require.Same(t, restored, again)

	_, err = restarted.Restore(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFullMatchIsArchived(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	archive := &recordingArchive{}
	svc := NewService(
		WithRand(rand.New(rand.NewSource(3))),
		WithHistoryStore(memstore.New()),
		WithPublisher(pub),
		WithArchive(archive),
		WithClock(fixedClock),
	)

	rules := domain.StrictRules(domain.Block)
	rules.TargetScore = 30
	session, _, err := svc.StartMatch(ctx, domain.Block, rules, twoPlayers())
	require.NoError(t, err)

	brain := bot.NewBrain(bot.SkillExpert, nil)
	for steps := 0; session.State().Phase != domain.PhaseMatchOver; steps++ {
		require.Less(t, steps, 5000)
		st := session.State()
		if st.Phase == domain.PhaseRoundOver {
			_, evs, err := svc.NextRound(ctx, session.ID)
			require.NoError(t, err)
			require.Equal(t, EventMatchStarted, evs[0].Kind)
			continue
		}
		move, err := brain.ChooseMove(st, st.Turn)
		require.NoError(t, err)
		_, _, err = svc.SubmitMove(ctx, session.ID, move)
		require.NoError(t, err)
	}

	require.Len(t, archive.records, 1)
	rec := archive.records[0]
	require.Equal(t, session.ID, rec.SessionID)
	require.Equal(t, []string{"u1", "u2"}, rec.PlayerIDs)
	require.Equal(t, session.State().MatchScores, rec.Scores)
	require.NotEmpty(t, rec.WinnerID)
	require.Equal(t, fixedClock(), rec.FinishedAt)
	require.Equal(t, 1, pub.kinds()[string(EventMatchOver)])

	svc.Close(ctx, session.ID)
	_, err = svc.Sessions().Get(session.ID)
	require.True(t, errors.Is(err, ErrSessionNotFound))
}
