package contract

import (
	"context"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/repository/specification"
)

type ChatRoomRepository interface {
	// CreateIfAbsent inserts the room unless its pair key already exists.
	// It reports whether this call created the row.
	CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error)
	// UpdateSummary moves the room summary forward; an older sentAt never overwrites a newer one.
	UpdateSummary(ctx context.Context, roomId int64, content string, sentAt time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
