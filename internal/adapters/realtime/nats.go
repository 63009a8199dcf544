package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"posteventcalendar/internal/domain"
)

type natsPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher returns a RealtimePublisher backed by a NATS connection,
// along with a close function draining it. Event changes are fanned out on
// subject "event-channel.{topicID}".
func NewNATSPublisher(url string, opts ...nats.Option) (domain.RealtimePublisher, func(), error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}
	closer := func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return &natsPublisher{conn: nc}, closer, nil
}

func (p *natsPublisher) Publish(_ context.Context, topicID, eventID int64) error {
	data, err := json.Marshal(map[string]int64{"event_id": eventID})
	if err != nil {
		return err
	}
	return p.conn.Publish(fmt.Sprintf("event-channel.%d", topicID), data)
}

type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a publisher that only logs, for development.
func NewNoopPublisher(logger *slog.Logger) domain.RealtimePublisher {
	return &noopPublisher{logger: logger}
}

func (p *noopPublisher) Publish(_ context.Context, topicID, eventID int64) error {
	p.logger.Info("would publish event change (noop)", "topic_id", topicID, "event_id", eventID)
	return nil
}
