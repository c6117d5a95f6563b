package chat

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters of a trimmed message body.
const MaxContentLength = 5000

// Validation rules, reported in the order they are checked.
const (
	RuleSenderRequired   = "sender_required"
	RuleReceiverRequired = "receiver_required"
	RuleContentRequired  = "content_required"
	RuleSelfMessage      = "self_message"
	RuleContentTooLong   = "content_too_long"
	RuleInvalidType      = "invalid_type"
)

var (
	ErrSenderRequired     = errors.New("sender id is required")
	ErrReceiverRequired   = errors.New("receiver id is required")
	ErrContentRequired    = errors.New("message content cannot be empty")
	ErrSelfMessage        = errors.New("cannot send a message to yourself")
	ErrContentTooLong     = fmt.Errorf("message content too long (max %d characters)", MaxContentLength)
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ValidationError identifies the first rule an inbound message violated.
type ValidationError struct {
	Rule string
	Err  error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InboundMessage is a chat message as submitted by a client.
// Pointer ids distinguish "absent" from a zero identifier.
type InboundMessage struct {
	SenderID    *int64  `json:"senderId"`
	ReceiverID  *int64  `json:"receiverId"`
	Content     *string `json:"content"`
	MessageType string  `json:"messageType"`
}

// ValidatedMessage is an accepted, normalized inbound message.
type ValidatedMessage struct {
	SenderID   int64
	ReceiverID int64
	Content    string
	Type       MessageType
}

// Validate checks msg against the inbound rules and returns its normalized form.
// It has no side effects.
func Validate(msg InboundMessage) (ValidatedMessage, error) {
	if msg.SenderID == nil {
		return ValidatedMessage{}, &ValidationError{Rule: RuleSenderRequired, Err: ErrSenderRequired}
	}
	if msg.ReceiverID == nil {
		return ValidatedMessage{}, &ValidationError{Rule: RuleReceiverRequired, Err: ErrReceiverRequired}
	}

	var content string
	if msg.Content != nil {
		content = strings.TrimSpace(*msg.Content)
	}
	if content == "" {
		return ValidatedMessage{}, &ValidationError{Rule: RuleContentRequired, Err: ErrContentRequired}
	}

	if *msg.SenderID == *msg.ReceiverID {
		return ValidatedMessage{}, &ValidationError{Rule: RuleSelfMessage, Err: ErrSelfMessage}
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return ValidatedMessage{}, &ValidationError{Rule: RuleContentTooLong, Err: ErrContentTooLong}
	}

	msgType, err := ParseMessageType(msg.MessageType)
	if err != nil {
		return ValidatedMessage{}, &ValidationError{Rule: RuleInvalidType, Err: err}
	}

	return ValidatedMessage{
		SenderID:   *msg.SenderID,
		ReceiverID: *msg.ReceiverID,
		Content:    content,
		Type:       msgType,
	}, nil
}

// RuleOf returns the violated rule of a validation failure, or "" for any other error.
func RuleOf(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Rule
	}
	return ""
}
