package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/JaimeStill/arbiter/pkg/lifecycle"
)

// Handler consumes a single event. A returned error is logged; the event is
// not redelivered.
type Handler func(ctx context.Context, e Event) error

// Publisher emits events. Domain systems depend on this narrow interface.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Forwarder relays published events to an external broker.
type Forwarder interface {
	Forward(ctx context.Context, e Event, payload []byte) error
	Close() error
}

// System is the event bus: Publish fans out to in-process subscribers and
// to the optional forwarder.
type System interface {
	Publisher
	// Subscribe registers h for events of eventType. Consumption begins when
	// Start runs and stops when the lifecycle context is cancelled.
	Subscribe(eventType string, h Handler)
	// Start launches subscribers and registers the shutdown hook.
	Start(lc *lifecycle.Coordinator) error
}

type subscription struct {
	topic   string
	handler Handler
}

type bus struct {
	pubsub    *gochannel.GoChannel
	forwarder Forwarder
	subs      []subscription
	logger    *slog.Logger
}

// NewBus creates an event bus. forwarder may be nil.
func NewBus(forwarder Forwarder, logger *slog.Logger) System {
	logger = logger.With("system", "events")
	adapter := watermill.NewSlogLoggerWithLevelMapping(logger, map[slog.Level]slog.Level{
		slog.LevelInfo: slog.LevelDebug,
	})
	return &bus{
		pubsub:    gochannel.NewGoChannel(gochannel.Config{}, adapter),
		forwarder: forwarder,
		logger:    logger,
	}
}

func (b *bus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set("event_type", e.Type)

	if err := b.pubsub.Publish(e.Type, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", e.Type, err)
	}

	if b.forwarder != nil {
		if err := b.forwarder.Forward(ctx, e, payload); err != nil {
			b.logger.WarnContext(ctx, "event forwarding failed", "type", e.Type, "error", err)
		}
	}

	b.logger.DebugContext(ctx, "event published", "type", e.Type, "id", e.ID)
	return nil
}

func (b *bus) Subscribe(eventType string, h Handler) {
	b.subs = append(b.subs, subscription{topic: eventType, handler: h})
}

func (b *bus) Start(lc *lifecycle.Coordinator) error {
	b.logger.Info("starting event bus", "subscriptions", len(b.subs))

	for _, s := range b.subs {
		messages, err := b.pubsub.Subscribe(lc.Context(), s.topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", s.topic, err)
		}
		lc.Go(func(ctx context.Context) {
			b.consume(ctx, s, messages)
		})
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := b.pubsub.Close(); err != nil {
			b.logger.Error("event bus close failed", "error", err)
		}
		if b.forwarder != nil {
			if err := b.forwarder.Close(); err != nil {
				b.logger.Error("event forwarder close failed", "error", err)
			}
		}
		b.logger.Info("event bus stopped")
	})

	return nil
}

func (b *bus) consume(ctx context.Context, s subscription, messages <-chan *message.Message) {
	for msg := range messages {
		var e Event
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			b.logger.Error("discarding malformed event", "topic", s.topic, "error", err)
			msg.Ack()
			continue
		}

		if err := s.handler(ctx, e); err != nil {
			b.logger.Error("event handler failed", "type", e.Type, "id", e.ID, "error", err)
		}
		msg.Ack()
	}
}
