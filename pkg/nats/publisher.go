package nats

import (
	"context"
	"fmt"
	"time"

	"electrician-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log *zap.Logger
}

func NewPublisher(nc *nats.Conn, log *zap.Logger) (*Publisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := EnsureStream(ctx, js); err != nil {
		// The stream may already exist with a foreign config, or NATS is still connecting.
		log.Warn("stream not ensured", zap.Error(err))
	}

	return &Publisher{nc: nc, js: js, log: log}, nil
}

// Publish sends an event to events.<type>. The message id deduplicates retries.
func (p *Publisher) Publish(ctx context.Context, msgID string, event events.Event) error {
	data, err := events.Encode(event)
	if err != nil {
		return err
	}

	subject := Subject(event.EventType())

	opts := []jetstream.PublishOpt{}
	if msgID != "" {
		opts = append(opts, jetstream.WithMsgID(msgID))
	}
	if _, err := p.js.Publish(ctx, subject, data, opts...); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}

	p.log.Debug("event published", zap.String("subject", subject), zap.String("msg_id", msgID))
	return nil
}

// Close flushes pending publishes. The connection belongs to the caller.
func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		if err := p.nc.FlushTimeout(2 * time.Second); err != nil {
			p.log.Warn("flush on close failed", zap.Error(err))
		}
	}
}
