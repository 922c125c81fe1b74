package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const metadataEventType = "event_type"

// Bus is an EventEmitter backed by a watermill in-process channel. Every
// registered handler gets its own subscription and sees every event.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	handlers int
	closed   bool
}

var _ EventEmitter = (*Bus)(nil)

// NewBus creates a bus. A nil logger uses slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		logger: logger.With(slog.String("component", "event_bus")),
	}
}

// RegisterHandler subscribes handler to session events until ctx is
// cancelled or the bus is closed.
func (b *Bus) RegisterHandler(ctx context.Context, name string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("event bus is closed")
	}

	messages, err := b.pubSub.Subscribe(ctx, TopicSessions)
	if err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", name, err)
	}
	b.handlers++

	log := b.logger.With(slog.String("handler", name))
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.dispatch(log, handler, msg)
		}
	}()

	log.Debug("registered event handler", slog.Int("handler_count", b.handlers))
	return nil
}

// dispatch always acks: gochannel redelivers nacked messages immediately,
// and a failing handler would spin.
func (b *Bus) dispatch(log *slog.Logger, handler EventHandler, msg *message.Message) {
	defer msg.Ack()

	var event SessionEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("dropping malformed event",
			slog.String("message_uuid", msg.UUID),
			slog.String("error", err.Error()))
		return
	}

	if err := handler.HandleEvent(msg.Context(), &event); err != nil {
		log.Error("handler failed to process event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}

// EmitEvent implements EventEmitter.
func (b *Bus) EmitEvent(ctx context.Context, event *SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID.String(), payload)
	msg.Metadata.Set(metadataEventType, string(event.Type))
	msg.SetContext(context.WithoutCancel(ctx))

	b.logger.Debug("emitting event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.Int64("session_id", event.SessionID))

	if err := b.pubSub.Publish(TopicSessions, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close stops every subscription and waits for in-flight handlers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}
