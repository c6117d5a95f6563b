package controller

import (
	"errors"

	"electrician-be/internal/dto"
	"electrician-be/internal/pkg/serverutils"
	"electrician-be/internal/service"
	"electrician-be/pkg/chat"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetHistory(ctx *fiber.Ctx) error
	GetRooms(ctx *fiber.Ctx) error
	GetConversations(ctx *fiber.Ctx) error
	MarkSeen(ctx *fiber.Ctx) error
}

type chatController struct {
	service       service.IChatService
	jwtMiddleware fiber.Handler
}

func NewChatController(service service.IChatService, jwtMiddleware fiber.Handler) IChatController {
	return &chatController{
		service:       service,
		jwtMiddleware: jwtMiddleware,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Get("/history/:roomId", c.jwtMiddleware, c.GetHistory)
	h.Get("/rooms/:userId", c.jwtMiddleware, c.GetRooms)
	h.Get("/conversations/:userId", c.jwtMiddleware, c.GetConversations)
	h.Patch("/rooms/:roomId/seen", c.jwtMiddleware, c.MarkSeen)
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	requester, ok := serverutils.ParticipantID(ctx)
	if !ok {
		return serverutils.Unauthorized("Unauthorized")
	}

	var query dto.HistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.BadRequest("Invalid query", err)
	}
	if err := serverutils.ValidateRequest(&query); err != nil {
		return err
	}

	roomID := ctx.Params("roomId")
	if key, err := chat.ParsePairKey(roomID); err == nil && !key.Has(requester) {
		return serverutils.Forbidden("Not a participant of this room")
	}

	page, err := c.service.History(ctx.UserContext(), roomID, query.Page, query.Size)
	if err != nil {
		return serverutils.Internal("Failed to load history", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat history", dto.HistoryPageResponse{
		Items: dto.NewMessageDtos(page.Items),
		Page:  page.Page,
		Size:  page.Size,
		Total: page.Total,
	}))
}

func (c *chatController) GetRooms(ctx *fiber.Ctx) error {
	participantID, err := c.ownParticipant(ctx)
	if err != nil {
		return err
	}

	rooms, err := c.service.ListRooms(ctx.UserContext(), participantID)
	if err != nil {
		return serverutils.Internal("Failed to load rooms", err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat rooms", dto.NewChatRoomDtos(rooms)))
}

func (c *chatController) GetConversations(ctx *fiber.Ctx) error {
	participantID, err := c.ownParticipant(ctx)
	if err != nil {
		return err
	}

	latest, err := c.service.Conversations(ctx.UserContext(), participantID)
	if err != nil {
		return serverutils.Internal("Failed to load conversations", err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversations", dto.NewMessageDtos(latest)))
}

func (c *chatController) MarkSeen(ctx *fiber.Ctx) error {
	requester, ok := serverutils.ParticipantID(ctx)
	if !ok {
		return serverutils.Unauthorized("Unauthorized")
	}

	updated, err := c.service.MarkSeen(ctx.UserContext(), ctx.Params("roomId"), requester)
	switch {
	case errors.Is(err, service.ErrNotParticipant):
		return serverutils.Forbidden("Not a participant of this room")
	case errors.Is(err, service.ErrRoomNotFound):
		return serverutils.NotFound("Chat room", err)
	case err != nil:
		return serverutils.Internal("Failed to mark messages seen", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Messages marked as seen", dto.MarkSeenResponse{Updated: updated}))
}

// ownParticipant reads :userId and requires it to be the authenticated participant.
func (c *chatController) ownParticipant(ctx *fiber.Ctx) (int64, error) {
	requester, ok := serverutils.ParticipantID(ctx)
	if !ok {
		return 0, serverutils.Unauthorized("Unauthorized")
	}

	participantID, err := ctx.ParamsInt("userId")
	if err != nil || participantID <= 0 {
		return 0, serverutils.BadRequest("Invalid user id", err)
	}
	if int64(participantID) != requester {
		return 0, serverutils.Forbidden("Cannot read another participant's chats")
	}
	return requester, nil
}
