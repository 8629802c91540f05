package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/infrastructure/cache/memory"
	rediscache "github.com/tripwise/travel-agent/internal/infrastructure/cache/redis"
	"github.com/tripwise/travel-agent/internal/pkg/encryption"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, mutate func(*Config)) (*store, *memory.Client, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	backend := memory.NewClient()
	cfg := &Config{
		Cache:              backend,
		HistoryCap:         20,
		ViolationThreshold: 2,
		InactivityTimeout:  30 * time.Minute,
		Now:                clock.Now,
	}
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewStore(cfg)
	require.NoError(t, err)
	return s.(*store), backend, clock
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil)
	assert.EqualError(t, err, "config is required")

	_, err = NewStore(&Config{})
	assert.EqualError(t, err, "cache client is required")
}

func TestNewStore_Defaults(t *testing.T) {
	s, err := NewStore(&Config{Cache: memory.NewClient()})
	require.NoError(t, err)

	assert.Equal(t, DefaultHistoryCap, s.(*store).historyCap)
	assert.Equal(t, 2, s.(*store).threshold)
	assert.Equal(t, DefaultInactivityTimeout, s.(*store).timeout)
}

func judgeAs(action Action) func([]models.Turn) Action {
	return func([]models.Turn) Action { return action }
}

func admit(t *testing.T, s Store, id, text string, action Action) Admission {
	t.Helper()
	adm, err := s.Admit(context.Background(), id, models.NewUserTurn(text, time.Now()), 0, judgeAs(action))
	require.NoError(t, err)
	return adm
}

func TestStore_AdmitCreatesSessionOnce(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	first := admit(t, s, "abc", "hotels in Paris", Accept)
	created, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, created)

	second := admit(t, s, "abc", "attractions in Paris", Accept)
	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt, sess.CreatedAt)
	assert.Equal(t, first.Epoch, second.Epoch)
	assert.Equal(t, 2, sess.MessageCount)
	require.Len(t, second.History, 2)
	assert.Equal(t, "attractions in Paris", second.History[1].Content)
}

func TestStore_InvalidSessionID(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	for _, id := range []string{"", "has space", string(make([]byte, 129))} {
		_, err := s.Admit(ctx, id, models.NewUserTurn("hi", time.Now()), 0, judgeAs(Accept))
		assert.ErrorIs(t, err, ErrInvalidSessionID)
		assert.ErrorIs(t, s.RecordTurn(ctx, id, "epoch"), ErrInvalidSessionID)
		assert.ErrorIs(t, s.Reset(ctx, id), ErrInvalidSessionID)
	}
}

func TestStore_PeekDoesNotCreate(t *testing.T) {
	s, backend, _ := newTestStore(t, nil)
	ctx := context.Background()

	sess, err := s.Peek(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, sess)

	keys, err := backend.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_AdmitJudgesCurrentHistory(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()
	admit(t, s, "abc", "trip to Rome", Accept)

	var seen []models.Turn
	adm, err := s.Admit(ctx, "abc", models.NewUserTurn("what about hotels", time.Now()), 0,
		func(history []models.Turn) Action {
			seen = slices.Clone(history)
			return Accept
		})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "trip to Rome", seen[0].Content)
	require.Len(t, adm.History, 2)
	assert.Equal(t, "what about hotels", adm.History[1].Content)
}

func TestStore_AdmitEvictsOldest(t *testing.T) {
	s, _, _ := newTestStore(t, func(c *Config) { c.HistoryCap = 4 })

	for i := 0; i < 6; i++ {
		admit(t, s, "abc", fmt.Sprintf("msg %d", i), Accept)
	}

	sess, err := s.Peek(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, sess.History, 4)
	assert.Equal(t, "msg 2", sess.History[0].Content)
	assert.Equal(t, "msg 5", sess.History[3].Content)
	assert.Equal(t, 6, sess.MessageCount)
}

func TestStore_AdmitPastMessageLimit(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	called := 0
	judge := func([]models.Turn) Action {
		called++
		return Accept
	}
	for i := 0; i < 3; i++ {
		adm, err := s.Admit(ctx, "abc", models.NewUserTurn("hotels in Rome", time.Now()), 2, judge)
		require.NoError(t, err)
		assert.Equal(t, i == 2, adm.Limited)
	}

	assert.Equal(t, 2, called)
	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, sess.MessageCount)
	assert.Len(t, sess.History, 2)
}

func TestStore_RecordTurnDropsOrphanToolResults(t *testing.T) {
	s, _, clock := newTestStore(t, func(c *Config) { c.HistoryCap = 2 })
	ctx := context.Background()
	now := clock.Now()

	adm := admit(t, s, "abc", "hotels in Rome", Accept)
	require.NoError(t, s.RecordTurn(ctx, "abc", adm.Epoch,
		models.NewToolCallTurn(models.ToolCall{ID: "call_1", Name: "search_hotels"}, now),
		models.NewToolResultTurn("call_1", "search_hotels", `{"hotels":[]}`, now),
		models.NewAssistantTurn("No hotels found.", now),
	))

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, sess.History, 1)
	assert.Equal(t, models.RoleAssistant, sess.History[0].Role)
}

func TestStore_RecordTurnAfterResetIsRejected(t *testing.T) {
	tests := []struct {
		name  string
		reset func(t *testing.T, s Store)
	}{
		{
			name: "manual reset then new message",
			reset: func(t *testing.T, s Store) {
				require.NoError(t, s.Reset(context.Background(), "abc"))
				admit(t, s, "abc", "hotels in Tokyo", Accept)
			},
		},
		{
			name: "manual reset only",
			reset: func(t *testing.T, s Store) {
				require.NoError(t, s.Reset(context.Background(), "abc"))
			},
		},
		{
			name: "security reset",
			reset: func(t *testing.T, s Store) {
				admit(t, s, "abc", "unsafe", Violate)
				assert.True(t, admit(t, s, "abc", "unsafe", Violate).Reset)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, clock := newTestStore(t, nil)
			ctx := context.Background()

			stale := admit(t, s, "abc", "hotels in Rome", Accept)
			tt.reset(t, s)

			err := s.RecordTurn(ctx, "abc", stale.Epoch, models.NewAssistantTurn("Rome has great hotels.", clock.Now()))
			assert.ErrorIs(t, err, ErrSessionRestarted)

			sess, err := s.Peek(ctx, "abc")
			require.NoError(t, err)
			if sess == nil {
				return
			}
			assert.NotEqual(t, stale.Epoch, sess.Epoch)
			for _, turn := range sess.History {
				assert.NotEqual(t, models.RoleAssistant, turn.Role)
			}
		})
	}
}

func TestStore_ViolationThresholdResets(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	admit(t, s, "abc", "trip to Rome", Accept)
	admit(t, s, "abc", "tell me a joke", Warn)

	first := admit(t, s, "abc", "unsafe", Violate)
	assert.False(t, first.Reset)
	assert.Equal(t, 1, first.Violations)

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.SecurityViolations)
	assert.Len(t, sess.History, 1)

	second := admit(t, s, "abc", "unsafe", Violate)
	assert.True(t, second.Reset)
	assert.Equal(t, 2, second.Violations)

	sess, err = s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Zero(t, sess.SecurityViolations)
	assert.Zero(t, sess.OffTopicWarnings)
	assert.Zero(t, sess.MessageCount)
	assert.Empty(t, sess.History)
	assert.Equal(t, sess.Epoch, second.Epoch)
	assert.NotEqual(t, first.Epoch, second.Epoch)
}

func TestStore_WarningsNeverReset(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	admit(t, s, "abc", "hotels in Tokyo", Accept)
	for i := 1; i <= 6; i++ {
		adm := admit(t, s, "abc", "tell me a joke", Warn)
		assert.Equal(t, i, adm.Warnings)
		assert.False(t, adm.Reset)
	}

	sess, err := s.Peek(context.Background(), "abc")
	require.NoError(t, err)
	assert.Len(t, sess.History, 1)
	assert.Equal(t, 7, sess.MessageCount)
}

func TestStore_ResetIsIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx, "never-existed"))

	admit(t, s, "abc", "hotels in Rome", Accept)
	require.NoError(t, s.Reset(ctx, "abc"))
	require.NoError(t, s.Reset(ctx, "abc"))

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_UpdateErrorDoesNotPersist(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.update(ctx, "abc", func(sess *models.Session) error {
		sess.MessageCount = 42
		return fmt.Errorf("boom")
	})
	assert.EqualError(t, err, "boom")

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_ExpireStale(t *testing.T) {
	s, _, clock := newTestStore(t, nil)
	ctx := context.Background()

	admit(t, s, "old", "visit Rome", Accept)
	clock.Advance(20 * time.Minute)
	admit(t, s, "fresh", "visit Paris", Accept)
	clock.Advance(15 * time.Minute)

	removed, err := s.ExpireStale(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	old, err := s.Peek(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := s.Peek(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestStore_ConcurrentSameSessionUpdatesAreSerialized(t *testing.T) {
	s, _, clock := newTestStore(t, func(c *Config) { c.HistoryCap = 200 })
	ctx := context.Background()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Admit(ctx, "shared", models.NewUserTurn(fmt.Sprintf("msg %d", i), clock.Now()), 0, judgeAs(Accept))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := s.Peek(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, n, sess.MessageCount)
	assert.Len(t, sess.History, n)
	assert.Zero(t, s.locks.size())
}

func TestStore_DifferentSessionsDoNotBlock(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	release, err := s.locks.acquire(context.Background(), "busy")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = s.Admit(ctx, "other", models.NewUserTurn("hotels in Rome", time.Now()), 0, judgeAs(Accept))
	assert.NoError(t, err)
}

func TestStore_LockWaitHonoursContext(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	release, err := s.locks.acquire(context.Background(), "busy")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = s.Admit(ctx, "busy", models.NewUserTurn("hotels in Rome", time.Now()), 0, judgeAs(Accept))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	assert.Zero(t, s.locks.size())
}

func TestStore_RedisBackendEncryptsState(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	backend, err := rediscache.NewClient(rediscache.Config{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	enc, err := encryption.NewAESEncryptor(key)
	require.NoError(t, err)

	s, err := NewStore(&Config{Cache: backend, Encryptor: enc})
	require.NoError(t, err)
	ctx := context.Background()

	admit(t, s, "abc", "hotels in Barcelona", Accept)

	raw, err := mr.Get("session:abc")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Barcelona")

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, sess.History, 1)
	assert.Equal(t, "hotels in Barcelona", sess.History[0].Content)
}

func TestStore_CorruptedEntryIsDiscarded(t *testing.T) {
	s, backend, _ := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "session:abc", []byte("{not json"), 0))

	sess, err := s.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, sess)

	raw, err := backend.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Nil(t, raw)
}
