package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"electrician-be/internal/dto"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/pkg/serverutils"
	"electrician-be/internal/repository/memory"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/internal/service"
	"electrician-be/internal/testsupport"
	internalWS "electrician-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "socket-secret"

func newTestSocketHandler(t *testing.T) (*ChatSocketHandler, *internalWS.Hub) {
	t.Helper()
	log := logger.NewNopLogger()
	db := testsupport.NewSQLiteDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	resolver := service.NewRoomResolver(uowFactory, memory.NewRoomCache(time.Minute), log)
	store := service.NewMessageStore(uowFactory, resolver, log)
	history := service.NewHistoryService(uowFactory, resolver, 50, 200, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := internalWS.NewHub(log)
	go hub.Run(ctx)

	chatService := service.NewChatService(uowFactory, store, history, hub, nil, nil, log)
	return NewChatSocketHandler(ctx, chatService, hub, testSecret, 8, log), hub
}

func decodeError(t *testing.T, raw []byte) dto.OutboundFrame {
	t.Helper()
	require.NotNil(t, raw)
	var frame dto.OutboundFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, dto.FrameTypeError, frame.Type)
	return frame
}

func TestHandleFrame_AcceptedProducesNoReply(t *testing.T) {
	h, hub := newTestSocketHandler(t)
	receiver := internalWS.NewClient(hub, nil, 12, 4, nil, logger.NewNopLogger())
	hub.Register(receiver)
	require.Eventually(t, func() bool { return hub.Subscribers("chat/12") == 1 }, time.Second, time.Millisecond)

	reply := h.HandleFrame(context.Background(), 7, []byte(`{"senderId":7,"receiverId":12,"content":"hello"}`))
	assert.Nil(t, reply)

	select {
	case raw := <-receiver.Send:
		assert.Contains(t, string(raw), `"channel":"chat/12"`)
		assert.Contains(t, string(raw), `"content":"hello"`)
	case <-time.After(time.Second):
		t.Fatal("receiver got nothing")
	}
}

func TestHandleFrame_Rejections(t *testing.T) {
	h, _ := newTestSocketHandler(t)

	tests := []struct {
		name    string
		payload string
		reason  string
	}{
		{"not json", `hello`, reasonMalformedFrame},
		{"blank content", `{"senderId":7,"receiverId":12,"content":"   "}`, "content_required"},
		{"self", `{"senderId":7,"receiverId":7,"content":"hi"}`, "self_message"},
		{"impersonation", `{"senderId":8,"receiverId":12,"content":"hi"}`, service.ReasonSenderMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := decodeError(t, h.HandleFrame(context.Background(), 7, []byte(tt.payload)))
			assert.Equal(t, tt.reason, frame.Reason)
			assert.NotEmpty(t, frame.Message)
		})
	}
}

func TestServeWs_RejectsHandshakes(t *testing.T) {
	h, _ := newTestSocketHandler(t)
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.NewErrorHandler(logger.NewNopLogger())})
	h.RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/chat/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/chat/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
