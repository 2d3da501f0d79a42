package nakama

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"domino/internal/bot"
	"domino/internal/domain"
)

// Match messages travel as binary google.protobuf.Struct payloads so clients can
// decode them with any stock protobuf runtime.

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// encodeStruct marshals v into a binary Struct.
func encodeStruct(v any) ([]byte, error) {
	st, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func decodeStruct(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if len(data) == 0 {
		return st, nil
	}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// MatchLabel is the JSON label Nakama indexes for match listing.
type MatchLabel struct {
	Open    int    `json:"open"`
	State   string `json:"state"`
	Game    string `json:"game"`
	Variant string `json:"variant"`
}

func encodeLabel(label MatchLabel) (string, error) {
	st, err := toStruct(label)
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeMove reads {type, tile_id?, end{branch,value}?} for the player at seat.
// The type may also arrive as kind, the name moves carry on the way out.
// A place request without an end opens the board.
func decodeMove(data []byte, seat int) (domain.Move, error) {
	st, err := decodeStruct(data)
	if err != nil {
		return domain.Move{}, fmt.Errorf("decode move: %w", err)
	}
	fields := st.GetFields()

	kindField, ok := fields["type"]
	if !ok {
		kindField = fields["kind"]
	}
	switch kind := domain.MoveKind(kindField.GetStringValue()); kind {
	case domain.MovePlace:
		tile, ok := fields["tile_id"]
		if !ok {
			return domain.Move{}, fmt.Errorf("decode move: place without tile_id")
		}
		end := domain.OpeningEnd
		if e := fields["end"].GetStructValue(); e != nil {
			end = domain.EndRef{
				Branch: int(e.GetFields()["branch"].GetNumberValue()),
				Value:  int(e.GetFields()["value"].GetNumberValue()),
			}
		}
		return domain.PlaceMove(seat, int(tile.GetNumberValue()), end), nil
	case domain.MoveDraw:
		return domain.DrawMove(seat), nil
	case domain.MovePass:
		return domain.PassMove(seat), nil
	case domain.MoveResign:
		return domain.ResignMove(seat), nil
	default:
		return domain.Move{}, fmt.Errorf("decode move: unsupported type %q", kind)
	}
}

// decodeSkill reads {skill_level} from a hint request.
func decodeSkill(data []byte) (bot.SkillLevel, error) {
	st, err := decodeStruct(data)
	if err != nil {
		return "", fmt.Errorf("decode hint request: %w", err)
	}
	return bot.ParseSkill(st.GetFields()["skill_level"].GetStringValue()), nil
}

// hintResponse is the wire shape of an advisor answer.
type hintResponse struct {
	BestMove   domain.Move   `json:"best_move"`
	Alternates []domain.Move `json:"alternates"`
	Reasoning  []string      `json:"reasoning"`
	Confidence int           `json:"confidence"`
}

func newHintResponse(h bot.Hint) hintResponse {
	resp := hintResponse{
		BestMove:   h.Best.Move,
		Alternates: make([]domain.Move, len(h.Alternates)),
		Reasoning:  h.Reasoning,
		Confidence: h.Confidence,
	}
	for i, alt := range h.Alternates {
		resp.Alternates[i] = alt.Move
	}
	return resp
}

type errorEvent struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}
