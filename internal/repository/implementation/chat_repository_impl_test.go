package implementation

import (
	"context"
	"testing"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/model"
	"electrician-be/internal/repository/specification"
	"electrician-be/internal/testsupport"
	"electrician-be/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(t *testing.T, a, b int64) *entity.ChatRoom {
	t.Helper()
	key, err := chat.NewPairKey(a, b)
	require.NoError(t, err)
	return &entity.ChatRoom{Pair: key}
}

func TestChatRoomRepository_CreateIfAbsent(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	repo := NewChatRoomRepository(db)
	ctx := context.Background()

	first := newRoom(t, 12, 7)
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.Id)
	assert.False(t, first.CreatedAt.IsZero())

	second := newRoom(t, 7, 12)
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created, "same unordered pair must not insert twice")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindOne(ctx, specification.ByPairKey{Key: second.Pair})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.Id, found.Id)
	assert.Equal(t, chat.PairKey{Low: 7, High: 12}, found.Pair)
}

func TestChatRoomRepository_FindOneMissing(t *testing.T) {
	repo := NewChatRoomRepository(testsupport.NewSQLiteDB(t))

	found, err := repo.FindOne(context.Background(), specification.ByID{ID: 404})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestChatRoomRepository_UpdateSummaryOnlyMovesForward(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	repo := NewChatRoomRepository(db)
	ctx := context.Background()

	room := newRoom(t, 1, 2)
	_, err := repo.CreateIfAbsent(ctx, room)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateSummary(ctx, room.Id, "second", base.Add(time.Second)))
	require.NoError(t, repo.UpdateSummary(ctx, room.Id, "first", base))

	found, err := repo.FindOne(ctx, specification.ByID{ID: room.Id})
	require.NoError(t, err)
	require.NotNil(t, found.LastMessage)
	assert.Equal(t, "second", *found.LastMessage)
	assert.True(t, found.LastMessageAt.Equal(base.Add(time.Second)))
}

func TestChatRoomRepository_ByParticipantOrdersByActivity(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	repo := NewChatRoomRepository(db)
	ctx := context.Background()

	quiet := newRoom(t, 7, 30)
	older := newRoom(t, 7, 12)
	newer := newRoom(t, 20, 7)
	other := newRoom(t, 70, 71)
	for _, r := range []*entity.ChatRoom{quiet, older, newer, other} {
		_, err := repo.CreateIfAbsent(ctx, r)
		require.NoError(t, err)
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateSummary(ctx, older.Id, "old", base))
	require.NoError(t, repo.UpdateSummary(ctx, newer.Id, "new", base.Add(time.Minute)))

	rooms, err := repo.FindAll(ctx,
		specification.ByParticipant{ParticipantID: 7},
		specification.RecentActivityOrder{},
	)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, []int64{newer.Id, older.Id, quiet.Id}, []int64{rooms[0].Id, rooms[1].Id, rooms[2].Id})

	// 7 is not a substring match of 70/71.
	rooms, err = repo.FindAll(ctx, specification.ByParticipant{ParticipantID: 1})
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestMessageRepository_OrderingAndLatest(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	rooms := NewChatRoomRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	a := newRoom(t, 7, 12)
	b := newRoom(t, 7, 20)
	for _, r := range []*entity.ChatRoom{a, b} {
		_, err := rooms.CreateIfAbsent(ctx, r)
		require.NoError(t, err)
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	insert := func(roomId, sender, receiver int64, content string, at time.Time) *entity.Message {
		m := &entity.Message{
			ChatRoomId: roomId,
			SenderId:   sender,
			ReceiverId: receiver,
			Content:    content,
			Type:       chat.MessageTypeText,
			SentAt:     at,
		}
		require.NoError(t, messages.Create(ctx, m))
		require.NotZero(t, m.Id)
		return m
	}

	insert(a.Id, 7, 12, "a1", base)
	tieFirst := insert(a.Id, 12, 7, "a2", base.Add(time.Second))
	tieSecond := insert(a.Id, 7, 12, "a3", base.Add(time.Second))
	insert(b.Id, 20, 7, "b1", base.Add(time.Minute))

	list, err := messages.FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: a.Id},
		specification.ChronologicalOrder{},
	)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a1", list[0].Content)
	assert.Equal(t, tieFirst.Id, list[1].Id)
	assert.Equal(t, tieSecond.Id, list[2].Id)

	latest, err := messages.LatestPerRoom(ctx, []int64{a.Id, b.Id})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b1", latest[0].Content)
	assert.Equal(t, tieSecond.Id, latest[1].Id)

	empty, err := messages.LatestPerRoom(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessageRepository_MarkSeen(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	rooms := NewChatRoomRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	room := newRoom(t, 7, 12)
	_, err := rooms.CreateIfAbsent(ctx, room)
	require.NoError(t, err)

	now := time.Now().UTC()
	for i, dir := range [][2]int64{{7, 12}, {7, 12}, {12, 7}} {
		require.NoError(t, messages.Create(ctx, &entity.Message{
			ChatRoomId: room.Id,
			SenderId:   dir[0],
			ReceiverId: dir[1],
			Content:    "m",
			SentAt:     now.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	affected, err := messages.MarkSeen(ctx, room.Id, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = messages.MarkSeen(ctx, room.Id, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	unseen, err := messages.Count(ctx, specification.ByChatRoomID{ChatRoomID: room.Id}, specification.Unseen{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), unseen)
}

func TestMessageModel_HistoryIndexCoversOrder(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)

	indexes, err := db.Migrator().GetIndexes(&model.Message{})
	require.NoError(t, err)

	for _, idx := range indexes {
		if idx.Name() == "idx_messages_room_sent" {
			assert.Equal(t, []string{"chat_room_id", "sent_at", "id"}, idx.Columns())
			return
		}
	}
	t.Fatal("idx_messages_room_sent not found")
}
