package websocket

import (
	"context"
	"time"

	"electrician-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Room for a maximum-length message in 4-byte runes plus the envelope.
	maxMessageSize = 32 * 1024
)

// FrameHandler processes one inbound frame from a participant and returns an optional
// reply for that connection only.
type FrameHandler func(ctx context.Context, participantID int64, payload []byte) []byte

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	ID            string
	Hub           *Hub
	Conn          *websocket.Conn
	ParticipantID int64
	Channel       string

	// Buffered channel of outbound frames.
	Send chan []byte

	// guarded by Hub.mu; set when the hub closes Send
	closed bool

	handler FrameHandler
	logger  logger.ILogger
}

func NewClient(hub *Hub, conn *websocket.Conn, participantID int64, bufferSize int, handler FrameHandler, log logger.ILogger) *Client {
	return &Client{
		ID:            uuid.NewString(),
		Hub:           hub,
		Conn:          conn,
		ParticipantID: participantID,
		Channel:       Channel(participantID),
		Send:          make(chan []byte, bufferSize),
		handler:       handler,
		logger:        log,
	}
}

func (c *Client) reply(frame []byte) {
	if !c.Hub.SendTo(c, frame) {
		c.logger.Warn("Client", "Reply dropped", map[string]interface{}{"client_id": c.ID})
	}
}

// readPump pumps frames from the websocket connection to the handler.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"client_id": c.ID,
					"error":     err.Error(),
				})
			}
			return
		}

		if reply := c.handler(ctx, c.ParticipantID, payload); reply != nil {
			c.reply(reply)
		}
	}
}

// writePump pumps frames from the hub to the websocket connection, one frame per message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
