package memory

import (
	"testing"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCache_SaveAndGet(t *testing.T) {
	c := NewRoomCache(time.Minute)
	key, err := chat.NewPairKey(12, 7)
	require.NoError(t, err)

	c.Save(key.String(), &entity.ChatRoom{Id: 3, Pair: key})

	got, ok := c.Get("7_12")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Id)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("12_7")
	assert.False(t, ok)
}

func TestRoomCache_ReturnsCopies(t *testing.T) {
	c := NewRoomCache(time.Minute)
	room := &entity.ChatRoom{Id: 1, Pair: chat.PairKey{Low: 1, High: 2}}
	c.Save("1_2", room)

	room.Id = 99
	got, ok := c.Get("1_2")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Id)

	got.Id = 42
	again, _ := c.Get("1_2")
	assert.Equal(t, int64(1), again.Id)
}

func TestRoomCache_Expiry(t *testing.T) {
	c := NewRoomCache(20 * time.Millisecond)
	c.Save("1_2", &entity.ChatRoom{Id: 1})

	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("1_2")
	assert.False(t, ok)

	c.Save("1_2", &entity.ChatRoom{Id: 1})
	c.Delete("1_2")
	_, ok = c.Get("1_2")
	assert.False(t, ok)
}
