package websocket

import (
	"context"

	"electrician-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// ServeWs subscribes the connection to the participant's channel and blocks until it closes.
func ServeWs(ctx context.Context, hub *Hub, conn *websocket.Conn, participantID int64, bufferSize int, handler FrameHandler, log logger.ILogger) {
	client := NewClient(hub, conn, participantID, bufferSize, handler, log)
	hub.Register(client)

	go client.writePump()
	client.readPump(ctx)
}
