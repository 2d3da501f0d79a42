package ports

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope is one session event as it leaves the engine.
type Envelope struct {
	SessionID string          `json:"session_id"`
	Kind      string          `json:"kind"`
	Seq       int             `json:"seq"`
	At        time.Time       `json:"at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventPublisher fans session events out to other services.
type EventPublisher interface {
	// Publish sends one envelope. Delivery is best effort.
	Publish(ctx context.Context, env Envelope) error
}
