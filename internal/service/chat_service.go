package service

import (
	"context"
	"errors"
	"strconv"

	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/repository/specification"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/pkg/chat"

	"github.com/samber/lo"
)

type SendStatus string

const (
	SendAccepted SendStatus = "accepted"
	SendRejected SendStatus = "rejected"
	SendFailed   SendStatus = "failed"
)

// Rejection reasons beyond the validation rules in pkg/chat.
const (
	ReasonSenderMismatch     = "sender_mismatch"
	ReasonRateLimited        = "rate_limited"
	ReasonPersistenceFailure = "persistence_failure"
)

// SendResult tells the transport what happened to one inbound message.
type SendResult struct {
	Status  SendStatus
	Message *entity.Message
	Reason  string
	Err     error
}

// MessageBroadcaster pushes a persisted message to the live channels of both participants.
// Delivery is at-most-once and must not block.
type MessageBroadcaster interface {
	Deliver(msg *entity.Message)
}

// RateLimiter decides whether a sender may submit another message now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type IChatService interface {
	Send(ctx context.Context, authenticatedID int64, in chat.InboundMessage) SendResult
	History(ctx context.Context, roomIdentifier string, page, size int) (*MessagePage, error)
	ListRooms(ctx context.Context, participantID int64) ([]*entity.ChatRoom, error)
	Conversations(ctx context.Context, participantID int64) ([]*entity.Message, error)
	MarkSeen(ctx context.Context, roomIdentifier string, readerID int64) (int64, error)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	store       *MessageStore
	history     *HistoryService
	broadcaster MessageBroadcaster
	events      ChatEventPublisher
	limiter     RateLimiter
	logger      logger.ILogger
}

// NewChatService wires the write path. events and limiter may be nil.
func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	store *MessageStore,
	history *HistoryService,
	broadcaster MessageBroadcaster,
	events ChatEventPublisher,
	limiter RateLimiter,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		store:       store,
		history:     history,
		broadcaster: broadcaster,
		events:      events,
		limiter:     limiter,
		logger:      log,
	}
}

// Send runs validate, persist, broadcast for one inbound message. Nothing is stored or
// delivered unless the message passes every check.
func (s *chatService) Send(ctx context.Context, authenticatedID int64, in chat.InboundMessage) SendResult {
	msg, err := chat.Validate(in)
	if err != nil {
		return SendResult{Status: SendRejected, Reason: chat.RuleOf(err), Err: err}
	}

	if msg.SenderID != authenticatedID {
		s.logger.Warn("CHAT", "Sender does not match authenticated participant", map[string]interface{}{
			"sender_id":        msg.SenderID,
			"authenticated_id": authenticatedID,
		})
		return SendResult{Status: SendRejected, Reason: ReasonSenderMismatch}
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, strconv.FormatInt(msg.SenderID, 10))
		if err != nil {
			s.logger.Warn("CHAT", "Rate limiter unavailable, allowing message", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !allowed {
			return SendResult{Status: SendRejected, Reason: ReasonRateLimited}
		}
	}

	stored, err := s.store.Persist(ctx, msg)
	if err != nil {
		s.logger.Error("CHAT", "Failed to persist message", map[string]interface{}{
			"sender_id":   msg.SenderID,
			"receiver_id": msg.ReceiverID,
			"error":       err.Error(),
		})
		return SendResult{Status: SendFailed, Reason: ReasonPersistenceFailure, Err: err}
	}

	s.broadcaster.Deliver(stored)

	if s.events != nil {
		if err := s.events.PublishMessageSent(ctx, stored); err != nil {
			s.logger.Warn("CHAT", "Failed to publish message event", map[string]interface{}{
				"message_id": stored.Id,
				"error":      err.Error(),
			})
		}
	}

	return SendResult{Status: SendAccepted, Message: stored}
}

func (s *chatService) History(ctx context.Context, roomIdentifier string, page, size int) (*MessagePage, error) {
	return s.history.Page(ctx, roomIdentifier, page, size)
}

// ListRooms returns the participant's rooms, most recent activity first.
func (s *chatService) ListRooms(ctx context.Context, participantID int64) ([]*entity.ChatRoom, error) {
	return s.uowFactory.NewUnitOfWork(ctx).ChatRoomRepository().FindAll(ctx,
		specification.ByParticipant{ParticipantID: participantID},
		specification.RecentActivityOrder{},
	)
}

// Conversations returns the newest message of each room the participant is in, newest first.
func (s *chatService) Conversations(ctx context.Context, participantID int64) ([]*entity.Message, error) {
	rooms, err := s.ListRooms(ctx, participantID)
	if err != nil {
		return nil, err
	}

	roomIDs := lo.Map(rooms, func(r *entity.ChatRoom, _ int) int64 {
		return r.Id
	})
	return s.uowFactory.NewUnitOfWork(ctx).MessageRepository().LatestPerRoom(ctx, roomIDs)
}

func (s *chatService) MarkSeen(ctx context.Context, roomIdentifier string, readerID int64) (int64, error) {
	affected, err := s.store.MarkSeen(ctx, roomIdentifier, readerID)
	if err != nil && !errors.Is(err, ErrRoomNotFound) && !errors.Is(err, ErrNotParticipant) {
		s.logger.Error("CHAT", "Failed to mark messages seen", map[string]interface{}{
			"room_id":   roomIdentifier,
			"reader_id": readerID,
			"error":     err.Error(),
		})
	}
	return affected, err
}
