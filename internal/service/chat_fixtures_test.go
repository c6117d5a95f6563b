package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"electrician-be/internal/entity"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/repository/memory"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/internal/testsupport"

	"gorm.io/gorm"
)

type chatFixture struct {
	db          *gorm.DB
	uowFactory  unitofwork.RepositoryFactory
	resolver    *RoomResolver
	store       *MessageStore
	history     *HistoryService
	broadcaster *recordingBroadcaster
	events      *recordingEvents
	limiter     *stubLimiter
	chat        IChatService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	log := logger.NewNopLogger()
	db := testsupport.NewSQLiteDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	resolver := NewRoomResolver(uowFactory, memory.NewRoomCache(time.Minute), log)
	store := NewMessageStore(uowFactory, resolver, log)
	history := NewHistoryService(uowFactory, resolver, 50, 200, log)

	f := &chatFixture{
		db:          db,
		uowFactory:  uowFactory,
		resolver:    resolver,
		store:       store,
		history:     history,
		broadcaster: &recordingBroadcaster{},
		events:      &recordingEvents{},
		limiter:     &stubLimiter{allow: true},
	}
	f.chat = NewChatService(uowFactory, store, history, f.broadcaster, f.events, f.limiter, log)
	return f
}

// steppingClock returns strictly increasing instants so ordering assertions do not depend
// on the wall clock resolution.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []*entity.Message
}

func (b *recordingBroadcaster) Deliver(msg *entity.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) delivered() []*entity.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entity.Message(nil), b.messages...)
}

type recordingEvents struct {
	mu   sync.Mutex
	sent []int64
	err  error
}

func (e *recordingEvents) PublishMessageSent(_ context.Context, msg *entity.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, msg.Id)
	return nil
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

var errInjected = errors.New("injected failure")

// failInsertsInto makes every insert into table fail.
func failInsertsInto(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
