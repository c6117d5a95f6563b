package entity

import (
	"time"

	"electrician-be/pkg/chat"
)

type ChatRoom struct {
	Id            int64
	Pair          chat.PairKey
	LastMessage   *string
	LastMessageAt *time.Time
	CreatedAt     time.Time
}

// Participants returns the two participant ids in canonical order.
func (r *ChatRoom) Participants() []int64 {
	return []int64{r.Pair.Low, r.Pair.High}
}
