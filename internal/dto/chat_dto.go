package dto

import (
	"time"

	"electrician-be/internal/entity"
	"electrician-be/pkg/chat"

	"github.com/samber/lo"
)

// Chat payloads use camelCase keys; web and mobile clients share this contract.

type MessageDto struct {
	Id          int64     `json:"id"`
	Content     string    `json:"content"`
	SenderId    int64     `json:"senderId"`
	ReceiverId  int64     `json:"receiverId"`
	SentAt      time.Time `json:"sentAt"`
	MessageType string    `json:"messageType"`
	ChatRoomId  int64     `json:"chatRoomId"`
	RoomKey     string    `json:"roomKey"`
	Seen        bool      `json:"seen"`
}

type ChatRoomDto struct {
	Id            int64      `json:"id"`
	RoomKey       string     `json:"roomKey"`
	Participants  []int64    `json:"participants"`
	LastMessage   *string    `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type HistoryQuery struct {
	Page int `query:"page" validate:"min=0"`
	Size int `query:"size" validate:"min=0,max=200"`
}

type HistoryPageResponse struct {
	Items []MessageDto `json:"items"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Total int64        `json:"total"`
}

type MarkSeenResponse struct {
	Updated int64 `json:"updated"`
}

// Socket frames

const (
	FrameTypeMessage = "message"
	FrameTypeError   = "error"
)

type OutboundFrame struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message,omitempty"`
}

func NewMessageDto(m *entity.Message) MessageDto {
	var roomKey string
	if key, err := chat.NewPairKey(m.SenderId, m.ReceiverId); err == nil {
		roomKey = key.String()
	}
	return MessageDto{
		Id:          m.Id,
		Content:     m.Content,
		SenderId:    m.SenderId,
		ReceiverId:  m.ReceiverId,
		SentAt:      m.SentAt,
		MessageType: m.Type.String(),
		ChatRoomId:  m.ChatRoomId,
		RoomKey:     roomKey,
		Seen:        m.Seen,
	}
}

func NewMessageDtos(messages []*entity.Message) []MessageDto {
	return lo.Map(messages, func(m *entity.Message, _ int) MessageDto {
		return NewMessageDto(m)
	})
}

func NewChatRoomDto(r *entity.ChatRoom) ChatRoomDto {
	return ChatRoomDto{
		Id:            r.Id,
		RoomKey:       r.Pair.String(),
		Participants:  r.Participants(),
		LastMessage:   r.LastMessage,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
	}
}

func NewChatRoomDtos(rooms []*entity.ChatRoom) []ChatRoomDto {
	return lo.Map(rooms, func(r *entity.ChatRoom, _ int) ChatRoomDto {
		return NewChatRoomDto(r)
	})
}
