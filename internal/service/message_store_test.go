package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"electrician-be/internal/model"
	"electrician-be/internal/repository/specification"
	"electrician-be/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validated(sender, receiver int64, content string) chat.ValidatedMessage {
	return chat.ValidatedMessage{
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Type:       chat.MessageTypeText,
	}
}

func TestMessageStore_PersistUpdatesSummary(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 987654321, time.UTC)
	f.store.now = steppingClock(base, time.Second)

	first, err := f.store.Persist(ctx, validated(7, 12, "hello"))
	require.NoError(t, err)
	assert.NotZero(t, first.Id)
	assert.False(t, first.Seen)
	assert.Equal(t, base.Truncate(time.Microsecond), first.SentAt)

	second, err := f.store.Persist(ctx, validated(12, 7, "hi back"))
	require.NoError(t, err)
	assert.Equal(t, first.ChatRoomId, second.ChatRoomId)
	assert.Greater(t, second.Id, first.Id)

	room, err := f.uowFactory.NewUnitOfWork(ctx).ChatRoomRepository().FindOne(ctx, specification.ByID{ID: first.ChatRoomId})
	require.NoError(t, err)
	require.NotNil(t, room.LastMessage)
	assert.Equal(t, "hi back", *room.LastMessage)
	assert.True(t, room.LastMessageAt.Equal(second.SentAt))
}

func TestMessageStore_SummaryConsistentUnderConcurrentPersists(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	f.store.now = steppingClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), time.Millisecond)

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := int64(7), int64(12)
			if i%2 == 1 {
				sender, receiver = receiver, sender
			}
			_, errs[i] = f.store.Persist(ctx, validated(sender, receiver, fmt.Sprintf("m%d", i)))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	all, err := f.history.List(ctx, "7_12")
	require.NoError(t, err)
	require.Len(t, all, writers)
	newest := all[len(all)-1]

	var room model.ChatRoom
	require.NoError(t, f.db.First(&room, "pair_key = ?", "7_12").Error)
	require.NotNil(t, room.LastMessage)
	assert.Equal(t, newest.Content, *room.LastMessage)
	assert.True(t, room.LastMessageAt.Equal(newest.SentAt))
}

func TestMessageStore_FailureRollsBack(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.store.Persist(ctx, validated(7, 12, "first"))
	require.NoError(t, err)

	failInsertsInto(t, f.db, "messages")

	_, err = f.store.Persist(ctx, validated(7, 12, "lost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errInjected)

	var count int64
	require.NoError(t, f.db.Model(&model.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var room model.ChatRoom
	require.NoError(t, f.db.First(&room, "pair_key = ?", "7_12").Error)
	assert.Equal(t, "first", *room.LastMessage)
}

func TestMessageStore_MarkSeen(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	for _, m := range []chat.ValidatedMessage{
		validated(7, 12, "a"),
		validated(7, 12, "b"),
		validated(12, 7, "c"),
	} {
		_, err := f.store.Persist(ctx, m)
		require.NoError(t, err)
	}

	affected, err := f.store.MarkSeen(ctx, "12_7", 12)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	_, err = f.store.MarkSeen(ctx, "7_12", 99)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.store.MarkSeen(ctx, "1_2", 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = f.store.MarkSeen(ctx, "garbage", 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.Equal(t, int64(1), countRooms(t, f), "MarkSeen must not create rooms")
}
