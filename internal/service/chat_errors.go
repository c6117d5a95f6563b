package service

import "errors"

var (
	// ErrPersistence wraps any storage failure on the write path.
	ErrPersistence = errors.New("failed to persist chat message")
	// ErrRoomConflict means a room could be neither created nor found after repeated conflicts.
	ErrRoomConflict   = errors.New("chat room could not be resolved")
	ErrRoomNotFound   = errors.New("chat room not found")
	ErrNotParticipant = errors.New("participant does not belong to this chat room")
)
