package service

import (
	"context"
	"time"

	"electrician-be/internal/pkg/logger"
	"electrician-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const relayAttempts = 3

// IntegrationPublisher is the outbound event bus (NATS in production).
type IntegrationPublisher interface {
	Publish(ctx context.Context, msgID string, event events.Event) error
}

type IChatEventRelay interface {
	Consume(ctx context.Context) error
}

// ChatEventRelay drains the in-process topic and forwards each event to the integration bus.
type chatEventRelay struct {
	subscriber message.Subscriber
	topic      string
	out        IntegrationPublisher
	backoff    time.Duration
	logger     logger.ILogger
}

func NewChatEventRelay(subscriber message.Subscriber, topic string, out IntegrationPublisher, log logger.ILogger) IChatEventRelay {
	return &chatEventRelay{
		subscriber: subscriber,
		topic:      topic,
		out:        out,
		backoff:    200 * time.Millisecond,
		logger:     log,
	}
}

func (r *chatEventRelay) Consume(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			r.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (r *chatEventRelay) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Metadata.Get(eventTypeMetadata), msg.Payload, time.Now())
	if err != nil {
		r.logger.Error("CHAT_EVENTS", "Dropping undecodable event", map[string]interface{}{
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	// A Nack on the in-process channel redelivers immediately, so retries are bounded here
	// and the event is given up on rather than spinning while the broker is down.
	for attempt := 1; attempt <= relayAttempts; attempt++ {
		if err = r.out.Publish(ctx, msg.UUID, event); err == nil {
			msg.Ack()
			return
		}
		select {
		case <-ctx.Done():
			msg.Nack()
			return
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}

	r.logger.Error("CHAT_EVENTS", "Giving up on event", map[string]interface{}{
		"uuid":  msg.UUID,
		"type":  event.Type,
		"error": err.Error(),
	})
	msg.Ack()
}
