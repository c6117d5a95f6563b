package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"electrician-be/internal/dto"
	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func subscribe(t *testing.T, hub *Hub, participantID int64, buffer int) *Client {
	t.Helper()
	c := NewClient(hub, nil, participantID, buffer, nil, logger.NewNopLogger())
	before := hub.Subscribers(c.Channel)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.Subscribers(c.Channel) == before+1 }, time.Second, time.Millisecond)
	return c
}

func decodeFrame(t *testing.T, raw []byte) (dto.OutboundFrame, dto.MessageDto) {
	t.Helper()
	var envelope struct {
		dto.OutboundFrame
		Data dto.MessageDto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.OutboundFrame, envelope.Data
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "chat/12", Channel(12))
}

func TestHub_DeliverReachesBothParticipants(t *testing.T) {
	hub, _ := startHub(t)
	receiver := subscribe(t, hub, 12, 4)
	sender := subscribe(t, hub, 7, 4)
	bystander := subscribe(t, hub, 99, 4)

	hub.Deliver(&entity.Message{
		Id:         1,
		ChatRoomId: 3,
		SenderId:   7,
		ReceiverId: 12,
		Content:    "hello",
		Type:       chat.MessageTypeText,
		SentAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})

	frame, msg := decodeFrame(t, <-receiver.Send)
	assert.Equal(t, dto.FrameTypeMessage, frame.Type)
	assert.Equal(t, "chat/12", frame.Channel)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "7_12", msg.RoomKey)
	assert.Equal(t, "TEXT", msg.MessageType)

	frame, msg = decodeFrame(t, <-sender.Send)
	assert.Equal(t, "chat/7", frame.Channel)
	assert.Equal(t, int64(1), msg.Id)

	assert.Empty(t, bystander.Send)
}

func TestHub_MultipleDevicesOnOneChannel(t *testing.T) {
	hub, _ := startHub(t)
	phone := subscribe(t, hub, 12, 1)
	laptop := subscribe(t, hub, 12, 1)

	assert.Equal(t, 2, hub.Publish(Channel(12), map[string]string{"k": "v"}))
	assert.Len(t, phone.Send, 1)
	assert.Len(t, laptop.Send, 1)
}

func TestHub_DropsWithoutSubscriberOrBufferSpace(t *testing.T) {
	hub, _ := startHub(t)

	assert.Equal(t, 0, hub.Publish(Channel(404), "nobody"))

	slow := subscribe(t, hub, 5, 1)
	assert.Equal(t, 1, hub.Publish(Channel(5), "first"))
	assert.Equal(t, 0, hub.Publish(Channel(5), "second"), "full buffer drops instead of blocking")
	assert.Len(t, slow.Send, 1)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub, _ := startHub(t)
	c := subscribe(t, hub, 7, 1)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.Subscribers(c.Channel) == 0 }, time.Second, time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.SendTo(c, []byte("late")))
}

func TestHub_StopClosesClientsAndIgnoresLateRegistrations(t *testing.T) {
	hub, cancel := startHub(t)
	c := subscribe(t, hub, 7, 1)

	cancel()
	<-hub.done

	_, ok := <-c.Send
	assert.False(t, ok)

	done := make(chan struct{})
	go func() {
		hub.Unregister(c)
		hub.Register(NewClient(hub, nil, 8, 1, nil, logger.NewNopLogger()))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub stopped")
	}
}
