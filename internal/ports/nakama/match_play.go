package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"domino/internal/app"
	"domino/internal/bot"
	"domino/internal/domain"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventMatchStarted: OpMatchStarted,
	app.EventHandDealt:    OpHandDealt,
	app.EventMoveApplied:  OpMoveApplied,
	app.EventScoreChanged: OpScoreChanged,
	app.EventRoundOver:    OpRoundOver,
	app.EventMatchOver:    OpMatchOver,
}

// handDealtMessage carries the rejoin ticket next to the private hand.
type handDealtMessage struct {
	app.HandDealtPayload
	Ticket string `json:"ticket,omitempty"`
}

type seatView struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"is_owner"`
	IsBot       bool   `json:"is_bot"`
	Connected   bool   `json:"connected"`
	DisplayName string `json:"display_name"`
	HandCount   int    `json:"hand_count"`
	Score       int    `json:"score"`
}

type matchStateMessage struct {
	Seats     []string         `json:"seats"`
	OwnerSeat int              `json:"owner_seat"`
	Tick      int64            `json:"tick"`
	Variant   string           `json:"variant"`
	Players   []seatView       `json:"players"`
	Session   *domain.Snapshot `json:"session,omitempty"`
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOfUser(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.SessionID != "" {
		mh.sendError(state, dispatcher, logger, senderID, errorCodeRejected, string(domain.ReasonInvalidPhase), "match already running")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, app.MinPlayersToStartGame)
		return
	}

	players := make([]domain.PlayerInfo, 0, activeCount)
	for _, userID := range state.Seats {
		if userID != "" {
			players = append(players, domain.PlayerInfo{ID: userID, IsBot: isBotUserId(userID)})
		}
	}

	session, events, err := state.App.StartMatch(ctx, state.Variant, state.Rules, players)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, errorCodeRejected, string(domain.ReasonOf(err)), err.Error())
		return
	}

	state.SessionID = session.ID
	state.RoundOverTick = 0
	state.turnKey = ""

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(state, dispatcher, logger, events)

	logger.Info("StartGame: %s match %s started with %d players.", state.Variant, session.ID, activeCount)
}

func (mh *matchHandler) handleSubmitMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID := msg.GetUserId()
	session := state.session()
	if session == nil {
		mh.sendError(state, dispatcher, logger, userID, errorCodeRejected, string(domain.ReasonInvalidPhase), "no match running")
		return
	}
	seat, ok := session.State().SeatOf(userID)
	if !ok {
		mh.sendError(state, dispatcher, logger, userID, errorCodeRejected, string(domain.ReasonUnknownPlayer), "not seated in this match")
		return
	}

	move, err := decodeMove(msg.GetData(), seat)
	if err != nil {
		logger.Warn("SubmitMove: Invalid payload from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, errorCodeBadRequest, "", err.Error())
		return
	}

	result, err := mh.applyMove(ctx, state, dispatcher, logger, move)
	mh.sendTo(state, dispatcher, logger, userID, OpMoveResult, result)
	if err != nil {
		mh.sendError(state, dispatcher, logger, userID, errorCodeRejected, string(result.Reason), err.Error())
	}
}

func (mh *matchHandler) handleHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID := msg.GetUserId()
	if state.SessionID == "" {
		mh.sendError(state, dispatcher, logger, userID, errorCodeRejected, string(domain.ReasonInvalidPhase), "no match running")
		return
	}
	skill, err := decodeSkill(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, userID, errorCodeBadRequest, "", err.Error())
		return
	}
	hint, err := state.App.Hint(state.SessionID, userID, skill)
	if err != nil {
		mh.sendError(state, dispatcher, logger, userID, errorCodeRejected, string(domain.ReasonOf(err)), err.Error())
		return
	}
	mh.sendTo(state, dispatcher, logger, userID, OpHint, newHintResponse(hint))
}

func (mh *matchHandler) handleNextRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.seatOfUser(msg.GetUserId()) != state.OwnerSeat {
		logger.Warn("NextRound: User %s is not owner (owner_seat=%d)", msg.GetUserId(), state.OwnerSeat)
		return
	}
	mh.dealNextRound(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) dealNextRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.SessionID == "" {
		return
	}
	_, events, err := state.App.NextRound(ctx, state.SessionID)
	if err != nil {
		logger.Warn("NextRound: Failed to deal: %v", err)
		return
	}
	state.RoundOverTick = 0
	state.turnKey = ""
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// applyMove resolves move through the app service and broadcasts what it produced.
func (mh *matchHandler) applyMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, move domain.Move) (app.MoveResult, error) {
	sessionID := state.SessionID
	result, events, err := state.App.SubmitMove(ctx, sessionID, move)
	if err != nil {
		return result, err
	}
	mh.dispatchEvents(state, dispatcher, logger, events)

	switch result.Session.Phase {
	case domain.PhaseRoundOver:
		state.RoundOverTick = state.Tick
	case domain.PhaseMatchOver:
		logger.Info("Match %s is over, back to lobby.", sessionID)
		mh.closeSession(ctx, state)
		state.RoundOverTick = 0
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
	return result, nil
}

// processRoundBreak deals the next round once the break after a finished round has elapsed.
func (mh *matchHandler) processRoundBreak(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.RoundOverTick == 0 || state.Tick-state.RoundOverTick < roundBreakTicks {
		return
	}
	mh.dealNextRound(ctx, state, dispatcher, logger)
}

// processTurnTimeout enforces the turn clock for human seats.
func (mh *matchHandler) processTurnTimeout(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	session := state.session()
	if session == nil || state.TurnTimeout <= 0 {
		return
	}
	st := session.State()
	if st.Phase != domain.PhaseAwaitingMove {
		state.turnKey = ""
		return
	}
	userID := st.Players[st.Turn].ID
	if isBotUserId(userID) {
		return
	}

	key := fmt.Sprintf("%d/%d/%d", st.Round, len(st.History), st.Turn)
	if key != state.turnKey {
		state.turnKey = key
		state.TurnDeadline = state.Tick + int64(state.TurnTimeout)
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}

	move := domain.TimeoutMove(st.Turn)
	if state.TimeoutAutoPlay {
		agent := bot.NewAgent(userID, state.rng.Uint64())
		if auto, err := agent.PlayAtSeat(st, st.Turn); err == nil {
			move = auto
		}
	}
	logger.Info("TurnTimeout: %s timed out at seat %d, applying %s", userID, st.Turn, move.String())
	if _, err := mh.applyMove(ctx, state, dispatcher, logger, move); err != nil {
		logger.Error("TurnTimeout: Failed to apply %s: %v", move.String(), err)
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.SessionID == "" {
		if state.GetHumanPlayerCount() != 1 {
			state.LastSinglePlayerTick = 0
			return
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
			return
		}

		added := false
		for i, seat := range state.Seats {
			if seat != "" {
				continue
			}
			identity := bot.GetBotIdentity(i)
			state.Seats[i] = identity.UserID
			state.Bots[identity.UserID] = bot.NewAgent(identity.UserID, state.rng.Uint64())
			logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
			added = true
		}
		if added {
			mh.updateLabel(state, dispatcher, logger)
			mh.broadcastMatchState(state, dispatcher, logger)
		}
		state.LastSinglePlayerTick = 0
		return
	}

	// 2. Handle bot turns in-game
	session := state.session()
	if session == nil {
		return
	}
	st := session.State()
	if st.Phase != domain.PhaseAwaitingMove {
		state.BotWaitUntil = 0
		return
	}
	currentUserID := st.Players[st.Turn].ID
	if !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if spread := state.BotMaxDelay - state.BotMinDelay; spread > 0 {
			delay += state.rng.Intn(spread + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", currentUserID, st.Turn, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[currentUserID]
	if !exists {
		agent = bot.NewAgent(currentUserID, state.rng.Uint64())
		state.Bots[currentUserID] = agent
	}

	move, err := agent.Play(st)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", currentUserID, err)
		return
	}
	if _, err := mh.applyMove(ctx, state, dispatcher, logger, move); err != nil {
		logger.Error("processBots: Bot %s move %s rejected: %v", currentUserID, move.String(), err)
	}
}

// dispatchEvents sends each event to its recipients, or to everyone when it has none.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("dispatchEvents: No opcode for event %s", ev.Kind)
			continue
		}

		payload := ev.Payload
		if dealt, ok := payload.(app.HandDealtPayload); ok {
			payload = handDealtMessage{HandDealtPayload: dealt, Ticket: mh.ticketFor(state, dealt.UserID)}
		}

		data, err := encodeStruct(payload)
		if err != nil {
			logger.Error("dispatchEvents: Failed to encode %s: %v", ev.Kind, err)
			continue
		}

		if len(ev.Recipients) == 0 {
			dispatcher.BroadcastMessage(opCode, data, nil, nil, true)
			continue
		}
		var targets []runtime.Presence
		for _, userID := range ev.Recipients {
			if p, ok := state.Presences[userID]; ok {
				targets = append(targets, p)
			}
		}
		if len(targets) > 0 {
			dispatcher.BroadcastMessage(opCode, data, targets, nil, true)
		}
	}
}

func (mh *matchHandler) ticketFor(state *MatchState, userID string) string {
	if len(state.TicketSecret) == 0 || isBotUserId(userID) {
		return ""
	}
	seat := state.seatOfUser(userID)
	ticket, err := IssueTicket(state.TicketSecret, state.MatchID, userID, seat, time.Now())
	if err != nil {
		return ""
	}
	return ticket
}

func (mh *matchHandler) matchStateMessage(state *MatchState, viewer string) matchStateMessage {
	msg := matchStateMessage{
		Seats:     append([]string(nil), state.Seats[:]...),
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Variant:   string(state.Variant),
	}

	var snapshot *domain.Snapshot
	if session := state.session(); session != nil {
		snap := session.Snapshot(viewer)
		snapshot = &snap
		msg.Session = snapshot
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}
		_, connected := state.Presences[userID]

		view := seatView{
			UserID:      userID,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
			Connected:   connected || isBotUserId(userID),
			DisplayName: displayName,
		}
		if snapshot != nil {
			for _, p := range snapshot.Players {
				if p.ID == userID {
					view.HandCount = p.HandCount
					view.Score = p.Score
				}
			}
		}
		msg.Players = append(msg.Players, view)
	}
	return msg
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := encodeStruct(mh.matchStateMessage(state, ""))
	if err != nil {
		logger.Error("broadcastMatchState: Failed to encode: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

// sendPrivateState sends userID the table with their own hand revealed.
func (mh *matchHandler) sendPrivateState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	mh.sendTo(state, dispatcher, logger, userID, OpMatchState, mh.matchStateMessage(state, userID))
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload any) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Debug("Cannot send %d to %s: Presence not found", opCode, userID)
		return
	}
	data, err := encodeStruct(payload)
	if err != nil {
		logger.Error("Failed to encode message %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, reason, message string) {
	mh.sendTo(state, dispatcher, logger, userID, OpGameError, errorEvent{Code: code, Reason: reason, Message: message})
}

type hintSignal struct {
	UserID     string `json:"user_id"`
	SkillLevel string `json:"skill_level"`
}

// signalHint answers a JSON hint request with a JSON hint or {"error": ...}.
func (mh *matchHandler) signalHint(state *MatchState, logger runtime.Logger, data string) string {
	reply := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			logger.Error("MatchSignal: Failed to encode reply: %v", err)
			return ""
		}
		return string(b)
	}

	var req hintSignal
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return reply(map[string]string{"error": "invalid hint request"})
	}
	if state.SessionID == "" {
		return reply(map[string]string{"error": "no match running"})
	}
	hint, err := state.App.Hint(state.SessionID, req.UserID, bot.ParseSkill(req.SkillLevel))
	if err != nil {
		return reply(map[string]string{"error": err.Error(), "reason": string(domain.ReasonOf(err))})
	}
	return reply(newHintResponse(hint))
}
