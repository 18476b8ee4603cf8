package otp

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreSuite runs the Store contract against each backend.
type StoreSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
}

func (s *StoreSuite) TestGetMissing() {
	_, found, err := s.store.Get(s.ctx, "+15550000")
	s.Require().NoError(err)
	s.False(found)
}

func (s *StoreSuite) TestPutOverwrites() {
	issued := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.store.Put(s.ctx, "+15550001", Entry{Phone: "+15550001", Code: "111111", IssuedAt: issued}))
	s.Require().NoError(s.store.Put(s.ctx, "+15550001", Entry{Phone: "+15550001", Code: "222222", IssuedAt: issued, Verified: true}))

	entry, found, err := s.store.Get(s.ctx, "+15550001")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("222222", entry.Code)
	s.True(entry.Verified)
	s.True(issued.Equal(entry.IssuedAt))
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store { return NewMemoryStore() }})
}

func TestRedisStoreSuite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	suite.Run(t, &StoreSuite{newStore: func() Store {
		mr.FlushAll()
		return NewRedisStore(client, time.Minute)
	}})
}

func TestRedisStoreEvictsAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, 5*time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "+15550001", Entry{Phone: "+15550001", Code: "123456", IssuedAt: time.Now()}))

	mr.FastForward(5*time.Minute + time.Second)

	_, found, err := store.Get(ctx, "+15550001")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStorePrune(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, "old", Entry{Code: "111111", IssuedAt: now.Add(-10 * time.Minute)}))
	require.NoError(t, store.Put(ctx, "new", Entry{Code: "222222", IssuedAt: now}))

	removed := store.Prune(now.Add(-5 * time.Minute))
	require.Equal(t, 1, removed)
	require.Equal(t, 1, store.Len())

	_, found, _ := store.Get(ctx, "new")
	require.True(t, found)
}

func TestMemoryStoreConcurrentPhones(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			phone := fmt.Sprintf("+1555%04d", i)
			_ = store.Put(ctx, phone, Entry{Phone: phone, Code: "123456", IssuedAt: time.Now()})
			if _, found, _ := store.Get(ctx, phone); !found {
				t.Errorf("phone %s lost", phone)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, store.Len())
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "old", Entry{Code: "111111", IssuedAt: time.Now().Add(-time.Hour)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, 10*time.Millisecond, time.Minute, nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
