package store

import "github.com/matterpoll/ledger/server/poll"

// Store gives access to all parts of the ledger storage.
type Store interface {
	Poll() PollStore
	System() SystemStore
}

// PollStore stores polls by their sequential id and the number of assigned ids.
type PollStore interface {
	// Count returns the highest assigned poll id, 0 if no poll exists.
	Count() (int, error)
	// SetCount moves the count from old to new. It fails if the stored count is not old.
	SetCount(old, new int) error
	// Get returns the poll with the given id, or nil if no poll is stored under it.
	Get(id int) (*poll.Poll, error)
	// Insert stores a new poll. It fails if a poll with the same id exists.
	Insert(poll *poll.Poll) error
	// Update replaces prev with poll. It fails if the stored poll is not prev.
	Update(prev *poll.Poll, poll *poll.Poll) error
	// Delete removes a poll.
	Delete(poll *poll.Poll) error
}

// SystemStore stores information about the storage itself.
type SystemStore interface {
	GetVersion() (string, error)
	SaveVersion(version string) error
}
