package mapper

import (
	"electrician-be/internal/entity"
	"electrician-be/internal/model"
	"electrician-be/pkg/chat"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Room Mappers

func (m *ChatMapper) ChatRoomToEntity(r *model.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}
	return &entity.ChatRoom{
		Id:            r.Id,
		Pair:          chat.PairKey{Low: r.ParticipantLow, High: r.ParticipantHigh},
		LastMessage:   r.LastMessage,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *ChatMapper) ChatRoomToModel(r *entity.ChatRoom) *model.ChatRoom {
	if r == nil {
		return nil
	}
	return &model.ChatRoom{
		Id:              r.Id,
		PairKey:         r.Pair.String(),
		ParticipantLow:  r.Pair.Low,
		ParticipantHigh: r.Pair.High,
		LastMessage:     r.LastMessage,
		LastMessageAt:   r.LastMessageAt,
		CreatedAt:       r.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:         msg.Id,
		ChatRoomId: msg.ChatRoomId,
		SenderId:   msg.SenderId,
		ReceiverId: msg.ReceiverId,
		Content:    msg.Content,
		Type:       chat.MessageType(msg.MessageType),
		Seen:       msg.Seen,
		SentAt:     msg.SentAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	msgType := msg.Type
	if msgType == "" {
		msgType = chat.MessageTypeText
	}
	return &model.Message{
		Id:          msg.Id,
		ChatRoomId:  msg.ChatRoomId,
		SenderId:    msg.SenderId,
		ReceiverId:  msg.ReceiverId,
		Content:     msg.Content,
		MessageType: string(msgType),
		Seen:        msg.Seen,
		SentAt:      msg.SentAt,
	}
}
