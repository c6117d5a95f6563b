package unitofwork

import (
	"context"

	"electrician-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRoomRepository() contract.ChatRoomRepository
	MessageRepository() contract.MessageRepository
}
