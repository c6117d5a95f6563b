package handler

import (
	"context"
	"encoding/json"

	"electrician-be/internal/dto"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/pkg/serverutils"
	"electrician-be/internal/service"
	internalWS "electrician-be/internal/websocket"
	"electrician-be/pkg/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const reasonMalformedFrame = "malformed_frame"

var rejectionMessages = map[string]string{
	service.ReasonSenderMismatch: "senderId does not match the authenticated user",
	service.ReasonRateLimited:    "Too many messages, slow down",
}

type ChatSocketHandler struct {
	service    service.IChatService
	hub        *internalWS.Hub
	secret     []byte
	bufferSize int
	ctx        context.Context
	logger     logger.ILogger
}

// NewChatSocketHandler serves the chat socket. ctx bounds every session and is cancelled on shutdown.
func NewChatSocketHandler(ctx context.Context, service service.IChatService, hub *internalWS.Hub, jwtSecret string, bufferSize int, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		service:    service,
		hub:        hub,
		secret:     []byte(jwtSecret),
		bufferSize: bufferSize,
		ctx:        ctx,
		logger:     log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/ws", h.ServeWs)
}

// ServeWs authenticates the handshake and upgrades the connection.
// Browsers cannot set headers on a websocket handshake, so the token may come as ?token=.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}

	participantID, err := serverutils.ParseParticipantToken(tokenStr, h.secret)
	if err != nil {
		h.logger.Warn("ChatSocketHandler", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return serverutils.Unauthorized("Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatSocketHandler", "Session started", map[string]interface{}{"participant_id": participantID})
		internalWS.ServeWs(h.ctx, h.hub, conn, participantID, h.bufferSize, h.HandleFrame, h.logger)
		h.logger.Info("ChatSocketHandler", "Session ended", map[string]interface{}{"participant_id": participantID})
	})(c)
}

// HandleFrame sends one inbound chat frame. Accepted messages reach the sender through
// its own channel, so only rejections and failures produce a reply.
func (h *ChatSocketHandler) HandleFrame(ctx context.Context, participantID int64, payload []byte) []byte {
	var in chat.InboundMessage
	if err := json.Unmarshal(payload, &in); err != nil {
		return h.errorFrame(reasonMalformedFrame, "Frame is not a valid chat message")
	}

	result := h.service.Send(ctx, participantID, in)
	switch result.Status {
	case service.SendAccepted:
		return nil
	case service.SendRejected:
		message, ok := rejectionMessages[result.Reason]
		if !ok && result.Err != nil {
			message = result.Err.Error()
		}
		return h.errorFrame(result.Reason, message)
	default:
		return h.errorFrame(result.Reason, "Message could not be delivered, please retry")
	}
}

func (h *ChatSocketHandler) errorFrame(reason, message string) []byte {
	frame, err := json.Marshal(dto.OutboundFrame{
		Type:    dto.FrameTypeError,
		Reason:  reason,
		Message: message,
	})
	if err != nil {
		return nil
	}
	return frame
}
