package model

import "time"

// ChatRoom is a two-party room. PairKey is the canonical "<low>_<high>" identity and carries
// the uniqueness constraint that serializes concurrent first contacts.
type ChatRoom struct {
	Id              int64      `gorm:"primaryKey;autoIncrement"`
	PairKey         string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_chat_rooms_pair_key"`
	ParticipantLow  int64      `gorm:"not null;index:idx_chat_rooms_participant_low"`
	ParticipantHigh int64      `gorm:"not null;index:idx_chat_rooms_participant_high"`
	LastMessage     *string    `gorm:"type:text"`
	LastMessageAt   *time.Time `gorm:"index"`
	CreatedAt       time.Time  `gorm:"not null"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}
