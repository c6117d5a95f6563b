package memory

import (
	"time"

	"electrician-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// RoomCache keeps resolved rooms by pair key. Room identity never changes once created,
// so entries only need to expire to bound memory.
type RoomCache struct {
	cache *cache.Cache
}

func NewRoomCache(ttl time.Duration) *RoomCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RoomCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *RoomCache) Save(key string, room *entity.ChatRoom) {
	snapshot := *room
	c.cache.Set(key, &snapshot, cache.DefaultExpiration)
}

func (c *RoomCache) Get(key string) (*entity.ChatRoom, bool) {
	if x, found := c.cache.Get(key); found {
		room := *x.(*entity.ChatRoom)
		return &room, true
	}
	return nil, false
}

func (c *RoomCache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *RoomCache) Len() int {
	return c.cache.ItemCount()
}
