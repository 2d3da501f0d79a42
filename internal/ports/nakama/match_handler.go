package nakama

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"golang.org/x/exp/rand"

	"domino/internal/app"
	"domino/internal/bot"
	"domino/internal/config"
	"domino/internal/domain"
)

// roundBreakTicks is how long a finished round stays on screen before the next deal.
const roundBreakTicks = 5

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID   string                      `json:"match_id"`
	Seats     [app.MaxSeats]string        `json:"seats"`      // Array of user IDs, empty string means seat is empty
	OwnerSeat int                         `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                       `json:"tick"`       // Current tick of the match for turn-based logic
	Presences map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`          // Domino app service with the session logic

	Variant   domain.VariantKind `json:"variant"`
	Rules     domain.RuleSet     `json:"rules"`
	SessionID string             `json:"session_id"` // Active session, empty while in lobby

	TurnTimeout     int   `json:"turn_timeout"`      // Seconds a human has to move
	TimeoutAutoPlay bool  `json:"timeout_auto_play"` // Play the advised move for a timed-out human instead of skipping
	TurnDeadline    int64 `json:"turn_deadline"`     // Tick when the current human turn times out
	RoundOverTick   int64 `json:"round_over_tick"`   // Tick when the last round ended, 0 if none pending

	BotsEnabled          bool                  `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents

	TicketSecret []byte `json:"-"`

	turnKey string     // identifies the turn the deadline belongs to
	rng     *rand.Rand // bot delays and agent seeds
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// session returns the running session, or nil while in lobby.
func (ms *MatchState) session() *app.Session {
	if ms.SessionID == "" || ms.App == nil {
		return nil
	}
	s, err := ms.App.Sessions().Get(ms.SessionID)
	if err != nil {
		return nil
	}
	return s
}

// seatOfUser returns the table seat of userID or -1.
func (ms *MatchState) seatOfUser(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID != "" && seatUserID == userID {
			return i
		}
	}
	return -1
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

type matchHandler struct {
	svc *app.Service
}

func newMatchHandler(svc *app.Service) *matchHandler {
	if svc == nil {
		svc = app.NewService()
	}
	return &matchHandler{svc: svc}
}

func envInt(env map[string]string, key string, dst *int) {
	if val, ok := env[key]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	cfg := config.GetGameConfig()

	variant := domain.VariantKind(cfg.DefaultVariant)
	if v, ok := params["variant"].(string); ok {
		if _, err := domain.VariantFor(domain.VariantKind(v)); err == nil {
			variant = domain.VariantKind(v)
		} else {
			logger.Warn("MatchInit: Ignoring unknown variant %q", v)
		}
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		MatchID:          matchID,
		Tick:             0,
		Presences:        make(map[string]runtime.Presence),
		App:              mh.svc,
		OwnerSeat:        -1,
		Variant:          variant,
		Rules:            cfg.RulesFor(variant),
		TurnTimeout:      cfg.TurnTimeoutSeconds,
		TimeoutAutoPlay:  cfg.TimeoutAutoPlay,
		BotMinDelay:      cfg.BotMinDelaySeconds,
		BotMaxDelay:      cfg.BotMaxDelaySeconds,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
		rng:              rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}

	// Read environment variables for bot configuration
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["domino_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	envInt(env, "domino_bot_min_delay_sec", &state.BotMinDelay)
	envInt(env, "domino_bot_max_delay_sec", &state.BotMaxDelay)
	envInt(env, "domino_bot_auto_fill_delay_sec", &state.BotAutoFillDelay)
	envInt(env, "domino_turn_timeout_sec", &state.TurnTimeout)
	if val, ok := env["domino_ticket_secret"]; ok {
		state.TicketSecret = []byte(val)
	}

	// Defaults if not set
	if state.BotMinDelay <= 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if state.BotAutoFillDelay <= 0 {
		state.BotAutoFillDelay = 5
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second, all delays below are in ticks
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	allowed, reason := matchState.canJoin(presence.GetUserId(), metadata["ticket"])
	if !allowed {
		logger.Info("MatchJoinAttempt: Rejected %s: %s", presence.GetUserId(), reason)
	}
	return matchState, allowed, reason
}

// canJoin decides whether userID may enter. Running matches only take back seated
// players, and with a ticket secret configured they must present a valid ticket.
func (ms *MatchState) canJoin(userID, ticket string) (bool, string) {
	if ms.SessionID != "" {
		seat := ms.seatOfUser(userID)
		if seat < 0 {
			return false, "Match in progress"
		}
		if len(ms.TicketSecret) == 0 {
			return true, ""
		}
		claims, err := VerifyTicket(ms.TicketSecret, ticket)
		if err != nil || claims.Subject != userID || claims.MatchID != ms.MatchID || claims.Seat != seat {
			return false, "Invalid rejoin ticket"
		}
		return true, ""
	}

	if ms.seatOfUser(userID) >= 0 || ms.GetOpenSeatsCount() > 0 {
		return true, ""
	}
	for _, seat := range ms.Seats {
		if isBotUserId(seat) {
			return true, ""
		}
	}
	return false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOfUser(userID); seat >= 0 {
			logger.Info("MatchJoin: User %s is back in seat %d", userID, seat)
			mh.sendPrivateState(matchState, dispatcher, logger, userID)
			continue
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && matchState.SessionID == "" {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
// Seats of a running match are kept so the player can come back.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if matchState.SessionID != "" {
			logger.Debug("MatchLeave: User %s disconnected mid-match, seat kept.", p.GetUserId())
			continue
		}
		if seat := matchState.seatOfUser(p.GetUserId()); seat >= 0 {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), seat)
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		logger.Debug("MatchLeave: Owner set to seat %d.", newOwnerSeat)
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) || len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.closeSession(ctx, matchState)
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitMove:
			mh.handleSubmitMove(ctx, matchState, dispatcher, logger, msg)
		case OpRequestHint:
			mh.handleHint(matchState, dispatcher, logger, msg)
		case OpNextRound:
			mh.handleNextRound(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.sendPrivateState(matchState, dispatcher, logger, msg.GetUserId())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processRoundBreak(ctx, matchState, dispatcher, logger)
	mh.processTurnTimeout(ctx, matchState, dispatcher, logger)
	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		mh.closeSession(ctx, matchState)
	}
	return state
}

// MatchSignal answers hint requests relayed by the domino_hint RPC.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	return matchState, mh.signalHint(matchState, logger, data)
}

func (mh *matchHandler) closeSession(ctx context.Context, state *MatchState) {
	if state.SessionID == "" || state.App == nil {
		return
	}
	state.App.Close(ctx, state.SessionID)
	state.SessionID = ""
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	phase := labelStateLobby
	if state.SessionID != "" {
		phase = labelStatePlaying
	}
	return encodeLabel(MatchLabel{
		Open:    state.GetOpenSeatsCount(),
		State:   phase,
		Game:    labelGame,
		Variant: string(state.Variant),
	})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}
