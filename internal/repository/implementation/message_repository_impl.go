package implementation

import (
	"context"

	"electrician-be/internal/entity"
	"electrician-be/internal/mapper"
	"electrician-be/internal/model"
	"electrician-be/internal/repository/contract"
	"electrician-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Omit("ChatRoom").Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Message, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) MarkSeen(ctx context.Context, roomId int64, readerId int64) (int64, error) {
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.Message{}),
		specification.ByChatRoomID{ChatRoomID: roomId},
		specification.AddressedTo{ReceiverID: readerId},
		specification.Unseen{},
	)
	result := query.Update("seen", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *MessageRepositoryImpl) LatestPerRoom(ctx context.Context, roomIds []int64) ([]*entity.Message, error) {
	if len(roomIds) == 0 {
		return []*entity.Message{}, nil
	}

	// A message is the latest of its room when no other message in the room sorts after it.
	newer := r.db.Table("messages AS n").
		Select("1").
		Where("n.chat_room_id = messages.chat_room_id").
		Where("n.sent_at > messages.sent_at OR (n.sent_at = messages.sent_at AND n.id > messages.id)")

	var models []*model.Message
	err := r.db.WithContext(ctx).
		Where("messages.chat_room_id IN ?", roomIds).
		Where("NOT EXISTS (?)", newer).
		Order("messages.sent_at DESC").
		Order("messages.id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.Message, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}
