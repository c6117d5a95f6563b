package service

import (
	"context"

	"electrician-be/internal/entity"
	"electrician-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const eventTypeMetadata = "event_type"

type ChatEventPublisher interface {
	PublishMessageSent(ctx context.Context, msg *entity.Message) error
}

// chatEventPublisher hands events to the in-process bus; ChatEventRelay forwards them
// to NATS off the request path.
type chatEventPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewChatEventPublisher(publisher message.Publisher, topic string) ChatEventPublisher {
	return &chatEventPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

func (p *chatEventPublisher) PublishMessageSent(ctx context.Context, msg *entity.Message) error {
	event := events.ChatMessageSent(msg.ChatRoomId, msg.Id, msg.SenderId, msg.ReceiverId, msg.SentAt)

	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	wm := message.NewMessage(watermill.NewUUID(), payload)
	wm.Metadata.Set(eventTypeMetadata, event.EventType())
	wm.SetContext(ctx)

	return p.publisher.Publish(p.topic, wm)
}
