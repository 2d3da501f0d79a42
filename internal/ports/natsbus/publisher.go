// Package natsbus publishes session events on NATS subjects.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"domino/internal/ports"
)

// SubjectPrefix is the root of every subject this package publishes on.
const SubjectPrefix = "domino.session"

// Subject builds the subject for one event: domino.session.<id>.<kind>.
func Subject(sessionID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sessionID, kind)
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher is a ports.EventPublisher over a NATS connection.
type Publisher struct {
	conn Conn
}

// NewPublisher wraps an open connection.
func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Connect dials url with reconnect options and returns a publisher over it.
func Connect(url string, maxReconnects int, reconnectWait time.Duration) (*Publisher, *nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("domino"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewPublisher(nc), nc, nil
}

func (p *Publisher) Publish(_ context.Context, env ports.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", env.Kind, err)
	}
	if err := p.conn.Publish(Subject(env.SessionID, env.Kind), data); err != nil {
		return fmt.Errorf("publish %s event: %w", env.Kind, err)
	}
	return nil
}
