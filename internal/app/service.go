package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"domino/internal/bot"
	"domino/internal/domain"
	"domino/internal/ports"
)

// Service contains the domino use-cases operating on sessions.
type Service struct {
	log       zerolog.Logger
	sessions  *Manager
	history   ports.HistoryStore
	publisher ports.EventPublisher
	archive   ports.MatchArchive
	advisor   *bot.Advisor
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithHistoryStore records every round and move so sessions can be restored.
func WithHistoryStore(h ports.HistoryStore) Option { return func(s *Service) { s.history = h } }

// WithPublisher fans events out after each resolution.
func WithPublisher(p ports.EventPublisher) Option { return func(s *Service) { s.publisher = p } }

// WithArchive stores finished matches.
func WithArchive(a ports.MatchArchive) Option { return func(s *Service) { s.archive = a } }

// WithRand seeds shuffles and bot randomness.
func WithRand(rng *rand.Rand) Option { return func(s *Service) { s.rng = rng } }

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService constructs a Service. Without options it keeps sessions in memory only.
func NewService(opts ...Option) *Service {
	s := &Service{
		log:     zerolog.Nop(),
		advisor: bot.NewAdvisor(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	s.sessions = NewManager(s.history)
	return s
}

// Sessions exposes the session index.
func (s *Service) Sessions() *Manager { return s.sessions }

func (s *Service) seed() uint64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Uint64()
}

// StartMatch deals the first round and registers the session. Nothing is emitted
// or stored when dealing fails.
func (s *Service) StartMatch(ctx context.Context, kind domain.VariantKind, rules domain.RuleSet, players []domain.PlayerInfo) (*Session, []Event, error) {
	if len(players) < MinPlayersToStartGame {
		return nil, nil, domain.ErrTooFewPlayers
	}

	id := uuid.NewString()
	seed := s.seed()
	initial, err := domain.NewMatch(kind, rules, players, rand.New(rand.NewSource(seed)))
	if err != nil {
		s.log.Error().Err(err).Str("variant", string(kind)).Int("players", len(players)).Msg("start match failed")
		return nil, nil, err
	}

	session := newSession(id, initial, seed+1, s.now())
	s.sessions.add(session)
	s.saveRound(ctx, id, initial)

	events := dealEvents(id, initial)
	s.publish(ctx, id, 0, events)

	s.log.Info().
		Str("session", id).
		Str("variant", string(kind)).
		Int("players", len(players)).
		Int("turn", initial.Turn).
		Msg("match started")
	return session, events, nil
}

// SubmitMove resolves one move for the session.
func (s *Service) SubmitMove(ctx context.Context, sessionID string, move domain.Move) (MoveResult, []Event, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return MoveResult{}, nil, err
	}

	result, next, err := session.Submit(move)
	if err != nil {
		s.log.Warn().
			Str("session", sessionID).
			Str("move", move.String()).
			Str("reason", string(result.Reason)).
			Err(err).
			Msg("move rejected")
		return result, nil, err
	}

	last := next.History[len(next.History)-1]
	if s.history != nil {
		if err := s.history.Append(ctx, sessionID, last); err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Int("seq", last.Seq).Msg("history append failed")
		}
	}

	events := moveEvents(next, result.Deltas)
	s.publish(ctx, sessionID, last.Seq, events)

	if next.Terminal != nil {
		s.log.Info().
			Str("session", sessionID).
			Int("round", next.Round).
			Str("terminal", string(next.Terminal.Kind)).
			Int("winner", next.Terminal.Winner).
			Ints("scores", next.MatchScores).
			Msg("round over")
	}
	if next.Phase == domain.PhaseMatchOver {
		s.finishMatch(ctx, sessionID, next)
	}
	return result, events, nil
}

// NextRound deals the following round of a session whose round is over.
func (s *Service) NextRound(ctx context.Context, sessionID string) (*domain.State, []Event, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	next, err := session.NextRound()
	if err != nil {
		return nil, nil, err
	}
	s.saveRound(ctx, sessionID, next)

	events := dealEvents(sessionID, next)
	s.publish(ctx, sessionID, 0, events)
	s.log.Info().Str("session", sessionID).Int("round", next.Round).Int("turn", next.Turn).Msg("round dealt")
	return next, events, nil
}

// Hint ranks the moves of the player with userID at the requested skill.
func (s *Service) Hint(sessionID, userID string, skill bot.SkillLevel) (bot.Hint, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return bot.Hint{}, err
	}
	st := session.State()
	seat, ok := st.SeatOf(userID)
	if !ok {
		return bot.Hint{}, domain.NewRuleError(domain.ReasonUnknownPlayer, "user %s", userID)
	}
	return s.advisor.Advise(st, seat, skill)
}

// Snapshot returns the session as userID may see it.
func (s *Service) Snapshot(sessionID, userID string) (domain.Snapshot, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return session.Snapshot(userID), nil
}

// Restore brings a session back from the history store after a restart.
func (s *Service) Restore(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.sessions.Restore(ctx, sessionID, s.seed(), s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("session", sessionID).Int("moves", len(session.State().History)).Msg("session restored")
	return session, nil
}

// Close drops a session from memory and storage.
func (s *Service) Close(ctx context.Context, sessionID string) {
	s.sessions.Remove(sessionID)
	if s.history != nil {
		if err := s.history.Delete(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("history delete failed")
		}
	}
}

func (s *Service) saveRound(ctx context.Context, sessionID string, st *domain.State) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveRound(ctx, sessionID, st); err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Int("round", st.Round).Msg("history save failed")
	}
}

func (s *Service) publish(ctx context.Context, sessionID string, seq int, events []Event) {
	if s.publisher == nil {
		return
	}
	at := s.now()
	for _, ev := range events {
		if len(ev.Recipients) > 0 {
			// private payloads stay on the match connection
			continue
		}
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			s.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("encode event failed")
			continue
		}
		env := ports.Envelope{SessionID: sessionID, Kind: string(ev.Kind), Seq: seq, At: at, Payload: payload}
		if err := s.publisher.Publish(ctx, env); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Str("kind", string(ev.Kind)).Msg("publish failed")
		}
	}
}

func (s *Service) finishMatch(ctx context.Context, sessionID string, st *domain.State) {
	winner := domain.MatchLeader(st)
	record := ports.MatchRecord{
		SessionID:  sessionID,
		Variant:    string(st.Variant),
		Scores:     append([]int(nil), st.MatchScores...),
		Rounds:     st.Round + 1,
		Moves:      len(st.History),
		FinishedAt: s.now(),
	}
	for _, p := range st.Players {
		record.PlayerIDs = append(record.PlayerIDs, p.ID)
	}
	if winner >= 0 {
		record.WinnerID = st.Players[winner].ID
	}

	s.log.Info().Str("session", sessionID).Str("winner", record.WinnerID).Ints("scores", record.Scores).Msg("match over")

	if s.archive == nil {
		return
	}
	if err := s.archive.Archive(ctx, record); err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Int("rounds", record.Rounds).Msg("archive failed")
	}
}
