package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"domino/internal/domain"
)

var (
	errNoUser         = runtime.NewError("no user id in context", 16) // UNAUTHENTICATED
	errInvalidPayload = runtime.NewError("invalid payload", 3)        // INVALID_ARGUMENT
)

// QuickMatchRequest optionally narrows the search to one variant.
type QuickMatchRequest struct {
	Variant string `json:"variant"`
}

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// HintRequest asks the advisor about the caller's seat in a running match.
type HintRequest struct {
	MatchID    string `json:"match_id"`
	SkillLevel string `json:"skill_level"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcHint, rpcHint)
}

// quickMatchQuery finds lobbies of our game with at least one open seat.
func quickMatchQuery(variant string) string {
	query := fmt.Sprintf("+label.game:%s +label.state:%s +label.%s:>=1", labelGame, labelStateLobby, MatchLabelKeyOpenSeats)
	if variant != "" {
		query += " +label.variant:" + variant
	}
	return query
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", errInvalidPayload
		}
	}
	if req.Variant != "" {
		if _, err := domain.VariantFor(domain.VariantKind(req.Variant)); err != nil {
			return "", runtime.NewError(err.Error(), 3)
		}
	}

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 3 // ensure < 4 players

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(req.Variant))
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	params := map[string]interface{}{}
	if req.Variant != "" {
		params["variant"] = req.Variant
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameDomino, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcHint relays a hint request to the match so it is answered from the authoritative state.
func rpcHint(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errNoUser
	}

	var req HintRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", errInvalidPayload
	}

	signal, err := json.Marshal(hintSignal{UserID: userID, SkillLevel: req.SkillLevel})
	if err != nil {
		return "", err
	}
	reply, err := nk.MatchSignal(ctx, req.MatchID, string(signal))
	if err != nil {
		logger.Warn("Hint: signal to match %s failed: %v", req.MatchID, err)
		return "", err
	}
	if reply == "" {
		return "", errors.New("match did not answer")
	}
	return reply, nil
}
