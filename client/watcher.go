package client

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
)

// DefaultRefreshInterval is how often a Watcher refreshes without being asked to.
const DefaultRefreshInterval = 30 * time.Second

// Source is the part of Client a Watcher reads from.
type Source interface {
	GetActivePolls(ctx context.Context) ([]int, error)
	GetPoll(ctx context.Context, pollID int) (*poll.Snapshot, error)
}

// Watcher keeps a view of all active polls up to date.
type Watcher struct {
	source   Source
	interval time.Duration
	refresh  chan struct{}

	// OnUpdate receives the snapshots of all active polls, ordered by id.
	OnUpdate func([]*poll.Snapshot)
	// OnError receives failed refreshes. Optional.
	OnError func(error)
}

// NewWatcher returns a Watcher that refreshes every interval.
// A non-positive interval selects DefaultRefreshInterval.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Watcher{
		source:   source,
		interval: interval,
		refresh:  make(chan struct{}, 1),
	}
}

// Refresh asks the watcher to refresh as soon as possible. It never blocks.
func (w *Watcher) Refresh() {
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

// Run refreshes once and then on every tick or Refresh call until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-w.refresh:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	snapshots, err := w.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil && w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	if w.OnUpdate != nil {
		w.OnUpdate(snapshots)
	}
}

func (w *Watcher) fetch(ctx context.Context) ([]*poll.Snapshot, error) {
	ids, err := w.source.GetActivePolls(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get active polls")
	}

	snapshots := make([]*poll.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, err := w.source.GetPoll(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get poll %d", id)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}
