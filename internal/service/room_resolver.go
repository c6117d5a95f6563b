package service

import (
	"context"
	"fmt"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/repository/memory"
	"electrician-be/internal/repository/specification"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/pkg/chat"
	"electrician-be/pkg/database"

	"golang.org/x/sync/singleflight"
)

const maxResolveAttempts = 3

// RoomResolver maps an unordered participant pair to its single durable room.
//
// Cross-process races are settled by the unique pair_key constraint: the loser of an
// insert race re-reads the winner's row. Within one process, concurrent callers for the
// same pair share a single lookup.
type RoomResolver struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.RoomCache
	group      singleflight.Group
	now        func() time.Time
	logger     logger.ILogger
}

func NewRoomResolver(uowFactory unitofwork.RepositoryFactory, cache *memory.RoomCache, log logger.ILogger) *RoomResolver {
	return &RoomResolver{
		uowFactory: uowFactory,
		cache:      cache,
		now:        time.Now,
		logger:     log,
	}
}

// Resolve returns the room of {a, b}, creating it when absent. Resolve(a, b) and
// Resolve(b, a) always yield the same room.
func (r *RoomResolver) Resolve(ctx context.Context, a, b int64) (*entity.ChatRoom, error) {
	key, err := chat.NewPairKey(a, b)
	if err != nil {
		return nil, err
	}

	if room, ok := r.cache.Get(key.String()); ok {
		return room, nil
	}

	// Joined callers share one lookup; it ignores any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key.String(), func() (interface{}, error) {
		return r.findOrCreate(shared, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		room := *res.Val.(*entity.ChatRoom)
		return &room, nil
	}
}

// Lookup is the read-only variant of Resolve. It returns nil when the pair has no room.
func (r *RoomResolver) Lookup(ctx context.Context, key chat.PairKey) (*entity.ChatRoom, error) {
	if room, ok := r.cache.Get(key.String()); ok {
		return room, nil
	}

	repo := r.uowFactory.NewUnitOfWork(ctx).ChatRoomRepository()
	room, err := repo.FindOne(ctx, specification.ByPairKey{Key: key})
	if err != nil {
		return nil, fmt.Errorf("find chat room %s: %w", key, err)
	}
	if room != nil {
		r.cache.Save(key.String(), room)
	}
	return room, nil
}

func (r *RoomResolver) findOrCreate(ctx context.Context, key chat.PairKey) (*entity.ChatRoom, error) {
	repo := r.uowFactory.NewUnitOfWork(ctx).ChatRoomRepository()

	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		room, err := repo.FindOne(ctx, specification.ByPairKey{Key: key})
		if err != nil {
			return nil, fmt.Errorf("find chat room %s: %w", key, err)
		}
		if room != nil {
			r.cache.Save(key.String(), room)
			return room, nil
		}

		candidate := &entity.ChatRoom{
			Pair:      key,
			CreatedAt: r.now().UTC(),
		}
		created, err := repo.CreateIfAbsent(ctx, candidate)
		if err != nil {
			if database.IsUniqueViolation(err) {
				r.logger.Debug("CHAT", "Room creation lost a race, re-reading", map[string]interface{}{
					"pair_key": key.String(),
					"attempt":  attempt,
				})
				continue
			}
			return nil, fmt.Errorf("create chat room %s: %w", key, err)
		}
		if created {
			r.logger.Info("CHAT", "Chat room created", map[string]interface{}{
				"room_id":  candidate.Id,
				"pair_key": key.String(),
			})
			r.cache.Save(key.String(), candidate)
			return candidate, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrRoomConflict, key)
}
