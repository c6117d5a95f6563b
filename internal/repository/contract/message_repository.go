package contract

import (
	"context"

	"electrician-be/internal/entity"
	"electrician-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	MarkSeen(ctx context.Context, roomId int64, readerId int64) (int64, error)
	// LatestPerRoom returns the newest message of each given room; rooms without messages are skipped.
	LatestPerRoom(ctx context.Context, roomIds []int64) ([]*entity.Message, error)
}
