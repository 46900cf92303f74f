package plugin

import (
	"sync"
	"time"
)

// expiryScheduler fires a callback once the end time of a poll passed.
// It never changes stored state.
type expiryScheduler struct {
	mu      sync.Mutex
	timers  map[int]*time.Timer
	stopped bool

	clock  func() time.Time
	expire func(pollID int, endAt int64)
}

func newExpiryScheduler(clock func() time.Time, expire func(pollID int, endAt int64)) *expiryScheduler {
	return &expiryScheduler{
		timers: map[int]*time.Timer{},
		clock:  clock,
		expire: expire,
	}
}

// Schedule arranges for expire to be called at endAt, a unix time in milliseconds.
// A poll that is already scheduled keeps its timer.
func (s *expiryScheduler) Schedule(pollID int, endAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if _, ok := s.timers[pollID]; ok {
		return
	}

	d := time.UnixMilli(endAt).Sub(s.clock())
	if d < 0 {
		d = 0
	}
	s.timers[pollID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, pending := s.timers[pollID]
		delete(s.timers, pollID)
		s.mu.Unlock()

		if pending {
			s.expire(pollID, endAt)
		}
	})
}

// Pending returns the number of polls waiting for their end time.
func (s *expiryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending timers. Later calls to Schedule are ignored.
func (s *expiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}
