package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"electrician-be/internal/dto"
	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
)

// Channel names the live channel of a participant.
func Channel(participantID int64) string {
	return fmt.Sprintf("chat/%d", participantID)
}

type Hub struct {
	// Channel -> clients subscribed to it (one per device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// closed when Run returns
	done chan struct{}

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run owns registration until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Channel] = append(h.clients[client.Channel], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"channel":   client.Channel,
				"client_id": client.ID,
			})

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for channel, clients := range h.clients {
				for _, c := range clients {
					c.closed = true
					close(c.Send)
				}
				delete(h.clients, channel)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.Channel]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.Channel] = append(clients[:i], clients[i+1:]...)
			client.closed = true
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.Channel]) == 0 {
		delete(h.clients, client.Channel)
		h.logger.Info("Hub", "Channel has no subscribers left", map[string]interface{}{"channel": client.Channel})
	}
}

// Deliver pushes a persisted message to the receiver's channel, then the sender's.
func (h *Hub) Deliver(msg *entity.Message) {
	payload := dto.NewMessageDto(msg)
	h.Publish(Channel(msg.ReceiverId), payload)
	h.Publish(Channel(msg.SenderId), payload)
}

// Publish sends data to every client on channel and returns how many accepted it.
// It never blocks: a channel without subscribers or a full client buffer drops the frame.
func (h *Hub) Publish(channel string, data interface{}) int {
	frame, err := json.Marshal(dto.OutboundFrame{
		Type:    dto.FrameTypeMessage,
		Channel: channel,
		Data:    data,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"channel": channel, "error": err.Error()})
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[channel]
	if len(clients) == 0 {
		h.logger.Debug("Hub", "No subscriber, frame dropped", map[string]interface{}{"channel": channel})
		return 0
	}

	delivered := 0
	for _, client := range clients {
		select {
		case client.Send <- frame:
			delivered++
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{
				"channel":   channel,
				"client_id": client.ID,
			})
		}
	}
	return delivered
}

// Subscribers reports how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

// SendTo queues a frame for one client only. It reports false when the client is gone
// or its buffer is full.
func (h *Hub) SendTo(client *Client, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client.closed {
		return false
	}
	select {
	case client.Send <- frame:
		return true
	default:
		return false
	}
}

// Register and Unregister are no-ops once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
