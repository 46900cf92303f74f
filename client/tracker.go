package client

import (
	"context"

	"github.com/pkg/errors"
)

// Status is the state of a submitted mutation.
type Status int

const (
	// StatusPending means the mutation was sent but not yet confirmed.
	StatusPending Status = iota
	// StatusConfirmed means the server committed the mutation.
	StatusConfirmed
	// StatusRejected means the server refused the mutation. Retrying will not help.
	StatusRejected
	// StatusFailed means the mutation did not reach the ledger or the host failed
	// temporarily. The mutation can be resubmitted.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Submission is a status report for a mutation.
type Submission struct {
	Name   string
	Status Status
	Err    error
}

// Tracker reports the lifecycle of mutations. A mutation is only reported as
// confirmed after the server answered successfully.
type Tracker struct {
	// OnUpdate receives every status change. Optional.
	OnUpdate func(Submission)
	// Refresher is refreshed after every confirmed mutation. Optional.
	Refresher Refresher
}

// Refresher is implemented by Watcher.
type Refresher interface {
	Refresh()
}

// Submit runs mutate and returns its final status.
// OnUpdate is called with StatusPending before mutate runs.
func (t *Tracker) Submit(ctx context.Context, name string, mutate func(ctx context.Context) error) Submission {
	t.report(Submission{Name: name, Status: StatusPending})

	s := Submission{Name: name, Err: mutate(ctx)}
	switch {
	case s.Err == nil:
		s.Status = StatusConfirmed
	case IsTransient(s.Err), errors.Is(s.Err, context.Canceled), errors.Is(s.Err, context.DeadlineExceeded):
		s.Status = StatusFailed
	default:
		s.Status = StatusRejected
	}

	t.report(s)
	if s.Status == StatusConfirmed && t.Refresher != nil {
		t.Refresher.Refresh()
	}
	return s
}

func (t *Tracker) report(s Submission) {
	if t.OnUpdate != nil {
		t.OnUpdate(s)
	}
}
