package poll

// Names of the events published for external observers.
const (
	EventPollCreated = "poll_created"
	EventVoteCast    = "vote_cast"
	EventPollEnded   = "poll_ended"
	EventPollExpired = "poll_expired"
)

// Event is a notification about a committed ledger mutation.
type Event interface {
	Name() string
	ToMap() map[string]interface{}
}

// PollCreated is emitted after a poll was created.
type PollCreated struct {
	PollID   int
	Question string
	Creator  string
	EndAt    int64
}

// VoteCast is emitted after a vote was counted.
type VoteCast struct {
	PollID      int
	Voter       string
	OptionIndex int
}

// PollEnded is emitted after the creator ended a poll.
type PollEnded struct {
	PollID int
}

// PollExpired is emitted when the end time of a still active poll passes.
// It does not correspond to a mutation.
type PollExpired struct {
	PollID int
	EndAt  int64
}

func (e *PollCreated) Name() string { return EventPollCreated }
func (e *VoteCast) Name() string    { return EventVoteCast }
func (e *PollEnded) Name() string   { return EventPollEnded }
func (e *PollExpired) Name() string { return EventPollExpired }

// ToMap returns the event as a websocket payload.
func (e *PollCreated) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id":  e.PollID,
		"question": e.Question,
		"creator":  e.Creator,
		"end_at":   e.EndAt,
	}
}

// ToMap returns the event as a websocket payload.
func (e *VoteCast) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id":      e.PollID,
		"voter":        e.Voter,
		"option_index": e.OptionIndex,
	}
}

// ToMap returns the event as a websocket payload.
func (e *PollEnded) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id": e.PollID,
	}
}

// ToMap returns the event as a websocket payload.
func (e *PollExpired) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id": e.PollID,
		"end_at":  e.EndAt,
	}
}
