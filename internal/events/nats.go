package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const subjectPrefix = "events.study."

// jetStreamPublisher is the part of jetstream.JetStream the forwarder uses.
type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSForwarder republishes session events to JetStream subjects
// events.study.<type>.
type NATSForwarder struct {
	conn   *nats.Conn
	js     jetStreamPublisher
	logger *slog.Logger
}

var _ EventHandler = (*NATSForwarder)(nil)

// NewNATSForwarder connects to url and makes sure stream exists. A stream
// setup failure is logged, not returned, so a server that already has the
// stream under different settings still works.
func NewNATSForwarder(ctx context.Context, url, stream string, logger *slog.Logger) (*NATSForwarder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "nats_forwarder"))

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:      stream,
		Subjects:  []string{"events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		logger.Warn("failed to ensure stream", slog.String("stream", stream), slog.String("error", err.Error()))
	}

	return &NATSForwarder{conn: nc, js: js, logger: logger}, nil
}

// HandleEvent implements EventHandler.
func (f *NATSForwarder) HandleEvent(ctx context.Context, event *SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := subjectPrefix + string(event.Type)
	if _, err := f.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	f.logger.Debug("event forwarded",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}

// Close drains the connection.
func (f *NATSForwarder) Close() error {
	if f.conn == nil {
		return nil
	}
	return f.conn.Drain()
}
