package entity

import (
	"time"

	"electrician-be/pkg/chat"
)

type Message struct {
	Id         int64
	ChatRoomId int64
	SenderId   int64
	ReceiverId int64
	Content    string
	Type       chat.MessageType
	Seen       bool
	SentAt     time.Time
}
