package service

import (
	"context"
	"math"

	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/repository/specification"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/pkg/chat"
)

type MessagePage struct {
	Items []*entity.Message
	Total int64
	Page  int
	Size  int
}

// HistoryService reads the message sequence of a room. It never creates rooms.
type HistoryService struct {
	uowFactory  unitofwork.RepositoryFactory
	resolver    *RoomResolver
	defaultSize int
	maxSize     int
	logger      logger.ILogger
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory, resolver *RoomResolver, defaultSize, maxSize int, log logger.ILogger) *HistoryService {
	if defaultSize <= 0 {
		defaultSize = 50
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &HistoryService{
		uowFactory:  uowFactory,
		resolver:    resolver,
		defaultSize: defaultSize,
		maxSize:     maxSize,
		logger:      log,
	}
}

// List returns every message of the room, oldest first. A malformed or unknown room
// identifier yields an empty list, not an error.
func (s *HistoryService) List(ctx context.Context, roomIdentifier string) ([]*entity.Message, error) {
	room, err := s.findRoom(ctx, roomIdentifier)
	if err != nil || room == nil {
		return []*entity.Message{}, err
	}

	return s.uowFactory.NewUnitOfWork(ctx).MessageRepository().FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: room.Id},
		specification.ChronologicalOrder{},
	)
}

// Page returns one page of the room's history in the same order as List.
// Negative pages clamp to 0; sizes outside (0, max] fall back to the default or max.
func (s *HistoryService) Page(ctx context.Context, roomIdentifier string, page, size int) (*MessagePage, error) {
	page, size = s.normalize(page, size)
	result := &MessagePage{
		Items: []*entity.Message{},
		Page:  page,
		Size:  size,
	}

	room, err := s.findRoom(ctx, roomIdentifier)
	if err != nil || room == nil {
		return result, err
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).MessageRepository()
	total, err := repo.Count(ctx, specification.ByChatRoomID{ChatRoomID: room.Id})
	if err != nil {
		return nil, err
	}
	result.Total = total

	// page*size can overflow int for hostile page numbers; anything past the end is empty.
	if int64(page) > math.MaxInt64/int64(size) || int64(page)*int64(size) >= total {
		return result, nil
	}

	items, err := repo.FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: room.Id},
		specification.ChronologicalOrder{},
		specification.Page{Offset: page * size, Limit: size},
	)
	if err != nil {
		return nil, err
	}
	result.Items = items
	return result, nil
}

func (s *HistoryService) normalize(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.defaultSize
	}
	if size > s.maxSize {
		size = s.maxSize
	}
	return page, size
}

func (s *HistoryService) findRoom(ctx context.Context, roomIdentifier string) (*entity.ChatRoom, error) {
	key, err := chat.ParsePairKey(roomIdentifier)
	if err != nil {
		s.logger.Debug("CHAT", "History requested for malformed room id", map[string]interface{}{
			"room_id": roomIdentifier,
		})
		return nil, nil
	}
	return s.resolver.Lookup(ctx, key)
}
