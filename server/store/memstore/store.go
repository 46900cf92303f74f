// Package memstore implements the ledger storage in memory. Polls are kept in
// their encoded form so that compare-and-set behaves like the KV Store.
package memstore

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
	"github.com/matterpoll/ledger/server/store"
)

// Store is an in-memory store.Store.
type Store struct {
	pollStore   PollStore
	systemStore SystemStore
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		pollStore: PollStore{
			polls: map[int][]byte{},
		},
	}
}

// Poll returns the Poll Store
func (s *Store) Poll() store.PollStore { return &s.pollStore }

// System returns the System Store
func (s *Store) System() store.SystemStore { return &s.systemStore }

// PollStore keeps encoded polls in a map.
type PollStore struct {
	mu    sync.RWMutex
	count int
	polls map[int][]byte
}

// Count returns the highest assigned poll id.
func (s *PollStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}

// SetCount moves the count from old to new.
func (s *PollStore) SetCount(old, new int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count != old {
		return errors.Errorf("poll count changed, expected %d", old)
	}
	s.count = new
	return nil
}

// Get returns the poll for a given id, or nil.
func (s *PollStore) Get(id int) (*poll.Poll, error) {
	s.mu.RLock()
	b, ok := s.polls[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.Errorf("failed to decode poll %d", id)
	}
	return p, nil
}

// Insert stores a new poll.
func (s *PollStore) Insert(poll *poll.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[poll.ID]; ok {
		return errors.Errorf("poll %d already exists", poll.ID)
	}
	s.polls[poll.ID] = poll.EncodeToByte()
	return nil
}

// Update replaces prev with poll.
func (s *PollStore) Update(prev *poll.Poll, poll *poll.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !bytes.Equal(s.polls[poll.ID], prev.EncodeToByte()) {
		return errors.Errorf("poll %d was modified concurrently", poll.ID)
	}
	s.polls[poll.ID] = poll.EncodeToByte()
	return nil
}

// Delete removes a poll.
func (s *PollStore) Delete(poll *poll.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.polls, poll.ID)
	return nil
}

// SystemStore keeps the schema version in memory.
type SystemStore struct {
	mu      sync.RWMutex
	version string
}

// GetVersion returns the schema version.
func (s *SystemStore) GetVersion() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

// SaveVersion sets the schema version.
func (s *SystemStore) SaveVersion(version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	return nil
}
