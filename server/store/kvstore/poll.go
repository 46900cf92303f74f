package kvstore

import (
	"strconv"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
)

// PollStore allows to access polls in the KV Store.
type PollStore struct {
	api plugin.API
}

const (
	pollPrefix = "poll_"
	countKey   = "poll_count"
)

func pollKey(id int) string {
	return pollPrefix + strconv.Itoa(id)
}

// Count returns the highest assigned poll id.
func (s *PollStore) Count() (int, error) {
	b, appErr := s.api.KVGet(countKey)
	if appErr != nil {
		return 0, errors.Wrap(appErr, "failed to get poll count")
	}
	if len(b) == 0 {
		return 0, nil
	}
	count, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse poll count")
	}
	return count, nil
}

// SetCount atomically moves the poll count from old to new.
func (s *PollStore) SetCount(old, new int) error {
	var oldValue []byte
	if old != 0 {
		oldValue = []byte(strconv.Itoa(old))
	}
	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: oldValue,
	}
	ok, appErr := s.api.KVSetWithOptions(countKey, []byte(strconv.Itoa(new)), opt)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to set poll count")
	}
	if !ok {
		return errors.Errorf("poll count changed, expected %d", old)
	}
	return nil
}

// Get returns the poll for a given id. It returns nil if no poll is stored under the id.
func (s *PollStore) Get(id int) (*poll.Poll, error) {
	b, appErr := s.api.KVGet(pollKey(id))
	if appErr != nil {
		return nil, errors.Wrapf(appErr, "failed to get poll %d", id)
	}
	if b == nil {
		return nil, nil
	}
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.Errorf("failed to decode poll %d", id)
	}
	return p, nil
}

// Insert stores a new poll. It fails if a poll with the same id already exists.
func (s *PollStore) Insert(poll *poll.Poll) error {
	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: nil,
	}
	ok, appErr := s.api.KVSetWithOptions(pollKey(poll.ID), poll.EncodeToByte(), opt)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to insert poll")
	}
	if !ok {
		return errors.Errorf("poll %d already exists", poll.ID)
	}
	return nil
}

// Update replaces prev with poll. It fails if the stored poll is not prev.
func (s *PollStore) Update(prev *poll.Poll, poll *poll.Poll) error {
	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: prev.EncodeToByte(),
	}
	ok, appErr := s.api.KVSetWithOptions(pollKey(poll.ID), poll.EncodeToByte(), opt)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to update poll")
	}
	if !ok {
		return errors.Errorf("poll %d was modified concurrently", poll.ID)
	}
	return nil
}

// Delete removes a poll from the KV Store.
func (s *PollStore) Delete(poll *poll.Poll) error {
	if appErr := s.api.KVDelete(pollKey(poll.ID)); appErr != nil {
		return errors.Wrap(appErr, "failed to delete poll")
	}
	return nil
}
