package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher is the outbound side of the session event bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NATSPublisher publishes session events to NATS subjects of the form
// <prefix>.<session_id>.<event_type>.
type NATSPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewNATSPublisher creates a publisher on an existing NATS connection.
func NewNATSPublisher(nc *nats.Conn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{
		nc:            nc,
		subjectPrefix: subjectPrefix,
	}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	subject := fmt.Sprintf("%s.%s.%s", p.subjectPrefix, event.SessionID, event.Type)

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, messageBytes); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Int("size", len(messageBytes)).
		Msg("published session event")
	return nil
}

// NopPublisher discards events. Used in tests and single-process runs
// without a bus.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
