package model

import "time"

type Message struct {
	Id          int64     `gorm:"primaryKey;autoIncrement;index:idx_messages_room_sent,priority:3"`
	ChatRoomId  int64     `gorm:"not null;index:idx_messages_room_sent,priority:1"`
	ChatRoom    ChatRoom  `gorm:"foreignKey:ChatRoomId;references:Id;constraint:OnDelete:CASCADE"`
	SenderId    int64     `gorm:"not null;index"`
	ReceiverId  int64     `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	MessageType string    `gorm:"type:varchar(20);not null;default:'TEXT'"`
	Seen        bool      `gorm:"not null;default:false"`
	SentAt      time.Time `gorm:"not null;index:idx_messages_room_sent,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
