package plugin

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expiredPoll struct {
	PollID int
	EndAt  int64
}

func TestExpiryScheduler(t *testing.T) {
	t.Run("fires once the end time passed", func(t *testing.T) {
		now := time.Now()
		fired := make(chan expiredPoll, 2)
		s := newExpiryScheduler(func() time.Time { return now }, func(pollID int, endAt int64) {
			fired <- expiredPoll{pollID, endAt}
		})
		defer s.Stop()

		endAt := now.Add(20 * time.Millisecond).UnixMilli()
		s.Schedule(1, endAt)
		assert.Equal(t, 1, s.Pending())

		select {
		case e := <-fired:
			assert.Equal(t, expiredPoll{1, endAt}, e)
		case <-time.After(5 * time.Second):
			require.Fail(t, "expiry did not fire")
		}
		assert.Equal(t, 0, s.Pending())
	})

	t.Run("past end time fires immediately", func(t *testing.T) {
		now := time.Now()
		fired := make(chan expiredPoll, 1)
		s := newExpiryScheduler(func() time.Time { return now }, func(pollID int, endAt int64) {
			fired <- expiredPoll{pollID, endAt}
		})
		defer s.Stop()

		s.Schedule(3, now.Add(-time.Hour).UnixMilli())

		select {
		case e := <-fired:
			assert.Equal(t, 3, e.PollID)
		case <-time.After(5 * time.Second):
			require.Fail(t, "expiry did not fire")
		}
	})

	t.Run("scheduling twice keeps one timer", func(t *testing.T) {
		now := time.Now()
		var mu sync.Mutex
		calls := 0
		s := newExpiryScheduler(func() time.Time { return now }, func(int, int64) {
			mu.Lock()
			defer mu.Unlock()
			calls++
		})
		defer s.Stop()

		s.Schedule(1, now.Add(time.Hour).UnixMilli())
		s.Schedule(1, now.Add(time.Hour).UnixMilli())
		s.Schedule(2, now.Add(time.Hour).UnixMilli())
		assert.Equal(t, 2, s.Pending())
	})

	t.Run("stop cancels pending timers", func(t *testing.T) {
		now := time.Now()
		fired := make(chan expiredPoll, 1)
		s := newExpiryScheduler(func() time.Time { return now }, func(pollID int, endAt int64) {
			fired <- expiredPoll{pollID, endAt}
		})

		s.Schedule(1, now.Add(20*time.Millisecond).UnixMilli())
		s.Stop()
		s.Schedule(2, now.Add(-time.Hour).UnixMilli())
		assert.Equal(t, 0, s.Pending())

		select {
		case e := <-fired:
			assert.Fail(t, "expiry fired after stop", "poll %d", e.PollID)
		case <-time.After(100 * time.Millisecond):
		}
	})
}
