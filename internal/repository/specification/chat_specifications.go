package specification

import (
	"electrician-be/pkg/chat"

	"gorm.io/gorm"
)

// ByPairKey matches the single room of an unordered participant pair.
type ByPairKey struct {
	Key chat.PairKey
}

func (s ByPairKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pair_key = ?", s.Key.String())
}

type ByChatRoomID struct {
	ChatRoomID int64
}

func (s ByChatRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_room_id = ?", s.ChatRoomID)
}

// ByParticipant matches rooms where the participant is either side of the pair.
type ByParticipant struct {
	ParticipantID int64
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participant_low = ? OR participant_high = ?", s.ParticipantID, s.ParticipantID)
}

type AddressedTo struct {
	ReceiverID int64
}

func (s AddressedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("receiver_id = ?", s.ReceiverID)
}

type Unseen struct{}

func (s Unseen) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("seen = ?", false)
}

// ChronologicalOrder is the history order: sent_at ascending, ties broken by id.
type ChronologicalOrder struct{}

func (s ChronologicalOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sent_at ASC").Order("id ASC")
}

// RecentActivityOrder puts rooms with the newest message first and rooms without messages last.
type RecentActivityOrder struct{}

func (s RecentActivityOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("last_message_at DESC").
		Order("id DESC")
}
