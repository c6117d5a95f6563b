package service

import (
	"context"
	"fmt"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/pkg/chat"
)

// MessageStore persists messages and keeps each room's summary in step with them.
type MessageStore struct {
	uowFactory unitofwork.RepositoryFactory
	resolver   *RoomResolver
	now        func() time.Time
	logger     logger.ILogger
}

func NewMessageStore(uowFactory unitofwork.RepositoryFactory, resolver *RoomResolver, log logger.ILogger) *MessageStore {
	return &MessageStore{
		uowFactory: uowFactory,
		resolver:   resolver,
		now:        time.Now,
		logger:     log,
	}
}

// Persist stores msg in the room of its two participants. The message row and the room
// summary are written in one transaction: either both are visible or neither is.
func (s *MessageStore) Persist(ctx context.Context, msg chat.ValidatedMessage) (*entity.Message, error) {
	room, err := s.resolver.Resolve(ctx, msg.SenderID, msg.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	message := &entity.Message{
		ChatRoomId: room.Id,
		SenderId:   msg.SenderID,
		ReceiverId: msg.ReceiverID,
		Content:    msg.Content,
		Type:       msg.Type,
		Seen:       false,
		// Microseconds survive a round trip through every supported database.
		SentAt: s.now().UTC().Truncate(time.Microsecond),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ErrPersistence, err)
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: insert message: %w", ErrPersistence, err)
	}

	if err := uow.ChatRoomRepository().UpdateSummary(ctx, room.Id, message.Content, message.SentAt); err != nil {
		return nil, fmt.Errorf("%w: update room summary: %w", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", ErrPersistence, err)
	}

	s.logger.Debug("CHAT", "Message persisted", map[string]interface{}{
		"message_id": message.Id,
		"room_id":    room.Id,
	})
	return message, nil
}

// MarkSeen flags every unseen message addressed to readerID in the room as seen and
// returns how many changed.
func (s *MessageStore) MarkSeen(ctx context.Context, roomIdentifier string, readerID int64) (int64, error) {
	key, err := chat.ParsePairKey(roomIdentifier)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRoomNotFound, err)
	}
	if !key.Has(readerID) {
		return 0, ErrNotParticipant
	}

	room, err := s.resolver.Lookup(ctx, key)
	if err != nil {
		return 0, err
	}
	if room == nil {
		return 0, ErrRoomNotFound
	}

	affected, err := s.uowFactory.NewUnitOfWork(ctx).MessageRepository().MarkSeen(ctx, room.Id, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark seen in room %d: %w", room.Id, err)
	}
	return affected, nil
}
