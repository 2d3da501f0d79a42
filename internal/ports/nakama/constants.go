package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcHint is the Nakama RPC id clients call to ask the advisor for a move.
	RpcHint = "domino_hint"

	// MatchNameDomino is the authoritative match handler name registered with Nakama.
	MatchNameDomino = "domino_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpSubmitMove   int64 = 2
	OpRequestHint  int64 = 3
	OpNextRound    int64 = 4
	OpRequestState int64 = 5

	// Server -> Client events
	OpMatchState   int64 = 101
	OpMatchStarted int64 = 102
	OpHandDealt    int64 = 103 // send privately
	OpMoveApplied  int64 = 104
	OpScoreChanged int64 = 105
	OpRoundOver    int64 = 106
	OpMatchOver    int64 = 107
	OpMoveResult   int64 = 108 // send privately
	OpHint         int64 = 109 // send privately
	OpGameError    int64 = 110 // send privately
)

// Match label keys used by the quick match query.
const (
	MatchLabelKeyOpenSeats = "open"
	labelGame              = "domino"
	labelStateLobby        = "lobby"
	labelStatePlaying      = "playing"
)

const (
	// errorCodeRejected marks a move the rules engine refused.
	errorCodeRejected = 400
	// errorCodeBadRequest marks a payload that could not be decoded.
	errorCodeBadRequest = 422
)
