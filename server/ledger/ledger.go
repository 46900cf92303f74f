// Package ledger implements the poll ledger: sequentially numbered polls that
// accept exactly one vote per user until they are ended or expire.
//
// All mutating calls are applied one at a time while holding Lock. Queries do not
// take the lock, they read the committed state of the store and the current time.
package ledger

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
	"github.com/matterpoll/ledger/server/store"
)

// Notifier delivers events about committed mutations to external observers.
type Notifier interface {
	Notify(event poll.Event)
}

// Logger is satisfied by plugin.API.
type Logger interface {
	LogDebug(msg string, keyValuePairs ...interface{})
	LogWarn(msg string, keyValuePairs ...interface{})
}

// Dependencies are the collaborators of a Ledger. Clock, Notifier and Logger are optional.
type Dependencies struct {
	Store    store.Store
	Lock     sync.Locker
	Clock    func() time.Time
	Notifier Notifier
	Logger   Logger
}

// Ledger is the authoritative store of polls.
type Ledger struct {
	store    store.Store
	lock     sync.Locker
	clock    func() time.Time
	notifier Notifier
	logger   Logger
}

// New returns a Ledger for the given dependencies.
func New(deps Dependencies) *Ledger {
	l := &Ledger{
		store:    deps.Store,
		lock:     deps.Lock,
		clock:    deps.Clock,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
	if l.lock == nil {
		l.lock = &sync.Mutex{}
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.notifier == nil {
		l.notifier = nopNotifier{}
	}
	if l.logger == nil {
		l.logger = nopLogger{}
	}
	return l
}

// CreatePoll creates a new poll and returns its id. The id is the previous poll count plus one.
func (l *Ledger) CreatePoll(creator, question string, options []string, durationMinutes int) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	now := l.clock()

	count, err := l.store.Poll().Count()
	if err != nil {
		return 0, err
	}

	p, err := poll.NewPoll(count+1, creator, question, options, durationMinutes, now)
	if err != nil {
		return 0, err
	}

	// A record above the count was never published. It is left behind by a create that
	// failed half way and must not block the id.
	orphan, err := l.store.Poll().Get(p.ID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to check for unpublished poll")
	}
	if orphan != nil {
		l.logger.LogWarn("Removing unpublished poll", "pollID", p.ID, "question", orphan.Question)
		if err = l.store.Poll().Delete(orphan); err != nil {
			return 0, errors.Wrap(err, "failed to remove unpublished poll")
		}
	}

	if err = l.store.Poll().Insert(p); err != nil {
		return 0, errors.Wrap(err, "failed to store poll")
	}
	// The poll only becomes visible once the count includes its id.
	if err = l.store.Poll().SetCount(count, p.ID); err != nil {
		if delErr := l.store.Poll().Delete(p); delErr != nil {
			l.logger.LogWarn("Failed to remove poll after allocating its id failed", "pollID", p.ID, "error", delErr.Error())
		}
		return 0, errors.Wrap(err, "failed to allocate poll id")
	}

	l.logger.LogDebug("Created poll", "pollID", p.ID, "creator", creator)
	l.notifier.Notify(&poll.PollCreated{
		PollID:   p.ID,
		Question: p.Question,
		Creator:  p.Creator,
		EndAt:    p.EndAt,
	})
	return p.ID, nil
}

// Vote counts the vote of voter for the option at optionIndex.
func (l *Ledger) Vote(voter string, pollID, optionIndex int) error {
	if voter == "" {
		return poll.MissingIdentityError()
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	// The end of the poll is checked against the time the lock was acquired.
	now := l.clock()

	prev, err := l.getPoll(pollID)
	if err != nil {
		return err
	}

	p := prev.Copy()
	if err = p.Vote(voter, optionIndex, now); err != nil {
		return err
	}
	if err = l.store.Poll().Update(prev, p); err != nil {
		return errors.Wrap(err, "failed to store vote")
	}

	l.logger.LogDebug("Counted vote", "pollID", pollID, "voter", voter, "optionIndex", optionIndex)
	l.notifier.Notify(&poll.VoteCast{
		PollID:      pollID,
		Voter:       voter,
		OptionIndex: optionIndex,
	})
	return nil
}

// EndPoll ends a poll on behalf of its creator.
func (l *Ledger) EndPoll(caller string, pollID int) error {
	if caller == "" {
		return poll.MissingIdentityError()
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	prev, err := l.getPoll(pollID)
	if err != nil {
		return err
	}

	p := prev.Copy()
	if err = p.End(caller); err != nil {
		return err
	}
	if err = l.store.Poll().Update(prev, p); err != nil {
		return errors.Wrap(err, "failed to store ended poll")
	}

	l.logger.LogDebug("Ended poll", "pollID", pollID)
	l.notifier.Notify(&poll.PollEnded{PollID: pollID})
	return nil
}

// GetPoll returns a snapshot of a poll.
func (l *Ledger) GetPoll(pollID int) (*poll.Snapshot, error) {
	now := l.clock()
	p, err := l.getPoll(pollID)
	if err != nil {
		return nil, err
	}
	return p.Snapshot(now), nil
}

// HasVoted returns true if userID voted in the poll.
func (l *Ledger) HasVoted(pollID int, userID string) (bool, error) {
	p, err := l.getPoll(pollID)
	if err != nil {
		return false, err
	}
	return p.HasVoted(userID), nil
}

// GetVoterChoice returns the option index userID voted for.
// It fails with poll.ErrNoVote if the user has not voted.
func (l *Ledger) GetVoterChoice(pollID int, userID string) (int, error) {
	p, err := l.getPoll(pollID)
	if err != nil {
		return 0, err
	}
	return p.Choice(userID)
}

// GetActivePolls returns the ids of all polls that can still be voted on, in ascending order.
func (l *Ledger) GetActivePolls() ([]int, error) {
	now := l.clock()
	count, err := l.store.Poll().Count()
	if err != nil {
		return nil, err
	}

	ids := []int{}
	for id := 1; id <= count; id++ {
		p, err := l.store.Poll().Get(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			l.logger.LogWarn("Poll is missing from the store", "pollID", id)
			continue
		}
		if p.IsEffectivelyActive(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetWinner returns the leftmost option with the most votes.
func (l *Ledger) GetWinner(pollID int) (*poll.Winner, error) {
	p, err := l.getPoll(pollID)
	if err != nil {
		return nil, err
	}
	w := p.Winner()
	return &w, nil
}

// PollCount returns the highest assigned poll id.
func (l *Ledger) PollCount() (int, error) {
	return l.store.Poll().Count()
}

// getPoll returns the poll with the given id, or a poll.ErrNotFound error if the id was never assigned.
func (l *Ledger) getPoll(pollID int) (*poll.Poll, error) {
	if pollID < 1 {
		return nil, poll.NotFoundError(pollID)
	}
	count, err := l.store.Poll().Count()
	if err != nil {
		return nil, err
	}
	if pollID > count {
		return nil, poll.NotFoundError(pollID)
	}

	p, err := l.store.Poll().Get(pollID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Errorf("poll %d is missing from the store", pollID)
	}
	return p, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(poll.Event) {}

type nopLogger struct{}

func (nopLogger) LogDebug(string, ...interface{}) {}
func (nopLogger) LogWarn(string, ...interface{})  {}
