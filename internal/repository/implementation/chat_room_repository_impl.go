package implementation

import (
	"context"
	"errors"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/mapper"
	"electrician-be/internal/model"
	"electrician-be/internal/repository/contract"
	"electrician-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRoomRepository(db *gorm.DB) contract.ChatRoomRepository {
	return &ChatRoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRoomRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRoomRepositoryImpl) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error) {
	m := r.mapper.ChatRoomToModel(room)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*room = *r.mapper.ChatRoomToEntity(m)
	return true, nil
}

func (r *ChatRoomRepositoryImpl) UpdateSummary(ctx context.Context, roomId int64, content string, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatRoom{}).
		Where("id = ?", roomId).
		Where("last_message_at IS NULL OR last_message_at <= ?", sentAt).
		Updates(map[string]interface{}{
			"last_message":    content,
			"last_message_at": sentAt,
		}).Error
}

func (r *ChatRoomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatRoomToEntity(&m), nil
}

func (r *ChatRoomRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	var models []*model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatRoom, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatRoomToEntity(m)
	}
	return entities, nil
}

func (r *ChatRoomRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatRoom{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
