package client_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matterpoll/ledger/client"
	"github.com/matterpoll/ledger/server/poll"
)

type fakeSource struct {
	mu        sync.Mutex
	polls     map[int]*poll.Snapshot
	activeErr error
}

func (s *fakeSource) GetActivePolls(context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	ids := []int{}
	for id := range s.polls {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *fakeSource) GetPoll(_ context.Context, pollID int) (*poll.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polls[pollID]
	if !ok {
		return nil, errors.New("missing")
	}
	return p, nil
}

func (s *fakeSource) add(p *poll.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[p.ID] = p
}

func TestWatcher(t *testing.T) {
	t.Run("refreshes on start and on demand", func(t *testing.T) {
		source := &fakeSource{polls: map[int]*poll.Snapshot{1: {ID: 1, Question: "Q1", Active: true}}}
		updates := make(chan []*poll.Snapshot, 10)
		w := client.NewWatcher(source, time.Hour)
		w.OnUpdate = func(s []*poll.Snapshot) { updates <- s }

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		first := receive(t, updates)
		require.Len(t, first, 1)
		assert.Equal(t, "Q1", first[0].Question)

		source.add(&poll.Snapshot{ID: 2, Question: "Q2", Active: true})
		w.Refresh()

		second := receive(t, updates)
		require.Len(t, second, 2)
		assert.Equal(t, 1, second[0].ID)
		assert.Equal(t, 2, second[1].ID)

		cancel()
		select {
		case err := <-done:
			assert.True(t, errors.Is(err, context.Canceled))
		case <-time.After(5 * time.Second):
			require.Fail(t, "watcher did not stop")
		}
	})

	t.Run("refreshes on every interval", func(t *testing.T) {
		source := &fakeSource{polls: map[int]*poll.Snapshot{}}
		updates := make(chan []*poll.Snapshot, 10)
		w := client.NewWatcher(source, 10*time.Millisecond)
		w.OnUpdate = func(s []*poll.Snapshot) { updates <- s }

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = w.Run(ctx) }()

		assert.Empty(t, receive(t, updates))
		assert.Empty(t, receive(t, updates))
	})

	t.Run("errors are reported", func(t *testing.T) {
		source := &fakeSource{activeErr: errors.New("unreachable")}
		errs := make(chan error, 10)
		w := client.NewWatcher(source, time.Hour)
		w.OnUpdate = func([]*poll.Snapshot) { assert.Fail(t, "unexpected update") }
		w.OnError = func(err error) { errs <- err }

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = w.Run(ctx) }()

		select {
		case err := <-errs:
			assert.Contains(t, err.Error(), "unreachable")
		case <-time.After(5 * time.Second):
			require.Fail(t, "no error reported")
		}
	})

	t.Run("refresh never blocks", func(t *testing.T) {
		w := client.NewWatcher(&fakeSource{}, 0)
		w.Refresh()
		w.Refresh()
		w.Refresh()
	})
}

func receive(t *testing.T, updates <-chan []*poll.Snapshot) []*poll.Snapshot {
	t.Helper()
	select {
	case s := <-updates:
		return s
	case <-time.After(5 * time.Second):
		require.Fail(t, "no update received")
		return nil
	}
}
