package service

import (
	"context"
	"errors"

	"electrician-be/internal/pkg/logger"
	"electrician-be/pkg/events"
	pktNats "electrician-be/pkg/nats"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// ReadReceiptConsumer applies CHAT_ROOM_READ events published by other services.
type ReadReceiptConsumer struct {
	subscriber EventSubscriber
	chat       IChatService
	durable    string
	logger     logger.ILogger
}

func NewReadReceiptConsumer(subscriber EventSubscriber, chat IChatService, durable string, log logger.ILogger) *ReadReceiptConsumer {
	return &ReadReceiptConsumer{
		subscriber: subscriber,
		chat:       chat,
		durable:    durable,
		logger:     log,
	}
}

func (c *ReadReceiptConsumer) Start(ctx context.Context) error {
	if err := c.subscriber.Subscribe(ctx, pktNats.Subject(events.TypeChatRoomRead), c.durable, c.Handle); err != nil {
		return err
	}
	c.logger.Info("CHAT_EVENTS", "Read receipt consumer started", map[string]interface{}{"durable": c.durable})
	return nil
}

// Handle returns an error only for failures a redelivery could fix.
func (c *ReadReceiptConsumer) Handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	roomID, err := events.StringField(payload, "room_id")
	if err != nil {
		c.logger.Warn("CHAT_EVENTS", "Malformed read receipt", map[string]interface{}{"error": err.Error()})
		return nil
	}
	readerID, err := events.Int64Field(payload, "reader_id")
	if err != nil {
		c.logger.Warn("CHAT_EVENTS", "Malformed read receipt", map[string]interface{}{"error": err.Error()})
		return nil
	}

	affected, err := c.chat.MarkSeen(ctx, roomID, readerID)
	if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrNotParticipant) {
		c.logger.Warn("CHAT_EVENTS", "Ignoring read receipt", map[string]interface{}{
			"room_id":   roomID,
			"reader_id": readerID,
			"error":     err.Error(),
		})
		return nil
	}
	if err != nil {
		return err
	}

	c.logger.Debug("CHAT_EVENTS", "Read receipt applied", map[string]interface{}{
		"room_id":  roomID,
		"affected": affected,
	})
	return nil
}
