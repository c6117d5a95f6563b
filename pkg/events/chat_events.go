package events

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	TypeChatMessageSent = "CHAT_MESSAGE_SENT"
	TypeChatRoomRead    = "CHAT_ROOM_READ"
)

// ChatMessageSent is emitted once per accepted chat message.
func ChatMessageSent(roomID, messageID, senderID, receiverID int64, sentAt time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatMessageSent,
		Data: map[string]interface{}{
			"chat_room_id": roomID,
			"message_id":   messageID,
			"sender_id":    senderID,
			"receiver_id":  receiverID,
			"sent_at":      sentAt.UTC().Format(time.RFC3339Nano),
		},
		OccurredAt: sentAt,
	}
}

// ChatRoomRead is published by clients of this service when a participant has read a room.
func ChatRoomRead(roomKey string, readerID int64, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatRoomRead,
		Data: map[string]interface{}{
			"room_id":   roomKey,
			"reader_id": readerID,
		},
		OccurredAt: at,
	}
}

// Int64Field reads a numeric payload field. Payloads decoded from JSON carry numbers as
// float64, so both that and numeric strings are accepted.
func Int64Field(payload map[string]interface{}, key string) (int64, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("field %q is missing", key)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("field %q is not an integer", key)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, raw)
	}
}

func StringField(payload map[string]interface{}, key string) (string, error) {
	v, ok := payload[key].(string)
	if !ok {
		return "", fmt.Errorf("field %q is missing or not a string", key)
	}
	return v, nil
}
