package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type natsForwarder struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	prefix  string
	timeout time.Duration
}

// NewNATSForwarder connects to NATS and ensures a JetStream stream that
// captures every "<prefix>.>" subject.
func NewNATSForwarder(ctx context.Context, cfg *Config) (Forwarder, error) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, cfg.PublishTimeoutDuration())
	defer cancel()

	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	return &natsForwarder{
		nc:      nc,
		js:      js,
		prefix:  cfg.SubjectPrefix,
		timeout: cfg.PublishTimeoutDuration(),
	}, nil
}

// Subject returns the NATS subject an event type is forwarded to.
func Subject(prefix, eventType string) string {
	return prefix + "." + eventType
}

func (f *natsForwarder) Forward(ctx context.Context, e Event, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	subject := Subject(f.prefix, e.Type)
	if _, err := f.js.Publish(ctx, subject, payload, jetstream.WithMsgID(e.ID)); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func (f *natsForwarder) Close() error {
	return f.nc.Drain()
}
