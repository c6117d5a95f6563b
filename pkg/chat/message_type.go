package chat

import (
	"fmt"
	"strings"
)

// MessageType is the closed set of message kinds accepted on the chat channel.
type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeImage  MessageType = "IMAGE"
	MessageTypeFile   MessageType = "FILE"
	MessageTypeSystem MessageType = "SYSTEM"
)

var knownMessageTypes = map[MessageType]struct{}{
	MessageTypeText:   {},
	MessageTypeImage:  {},
	MessageTypeFile:   {},
	MessageTypeSystem: {},
}

// ParseMessageType maps client input onto a MessageType.
// Blank input defaults to TEXT; unknown values are an error rather than a silent fallback.
func ParseMessageType(raw string) (MessageType, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return MessageTypeText, nil
	}
	t := MessageType(trimmed)
	if _, ok := knownMessageTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMessageType, raw)
	}
	return t, nil
}

func (t MessageType) String() string {
	return string(t)
}
