package nats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"electrician-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// EventHandler is a function that processes an event.
// Returning an error naks the message so JetStream redelivers it.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	js  jetstream.JetStream
	log *zap.Logger

	mu       sync.Mutex
	consumes []jetstream.ConsumeContext
}

func NewSubscriber(nc *nats.Conn, log *zap.Logger) (*Subscriber, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &Subscriber{js: js, log: log}, nil
}

// Subscribe registers a handler for a subject pattern on a durable consumer.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) error {
	if err := EnsureStream(ctx, s.js); err != nil {
		s.log.Warn("stream not ensured", zap.Error(err))
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		s.dispatch(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.mu.Lock()
	s.consumes = append(s.consumes, cc)
	s.mu.Unlock()

	s.log.Info("subscribed", zap.String("subject", subject), zap.String("durable", durableName))
	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, msg jetstream.Msg, handler EventHandler) {
	occurredAt := time.Now()
	if meta, err := msg.Metadata(); err == nil {
		occurredAt = meta.Timestamp
	}

	event, err := events.Decode(strings.TrimPrefix(msg.Subject(), SubjectPrefix), msg.Data(), occurredAt)
	if err != nil {
		// Redelivery cannot fix a malformed body.
		s.log.Error("dropping undecodable event", zap.String("subject", msg.Subject()), zap.Error(err))
		_ = msg.Term()
		return
	}

	if err := handler(ctx, event); err != nil {
		s.log.Warn("handler failed", zap.String("subject", msg.Subject()), zap.Error(err))
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

// Close stops every consumer. The connection belongs to the caller.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cc := range s.consumes {
		cc.Stop()
	}
	s.consumes = nil
}
