package poll

import (
	"encoding/json"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

const (
	// MinOptions is the smallest number of options a poll can have.
	MinOptions = 2
	// MaxOptions is the largest number of options a poll can have.
	MaxOptions = 10
	// MaxDurationMinutes is seven days.
	MaxDurationMinutes = 7 * 24 * 60
)

// Poll stores all needed information for a poll
type Poll struct {
	ID         int
	Question   string
	Options    []string
	VoteCounts []int
	Creator    string
	CreatedAt  int64
	EndAt      int64
	Active     bool
	// Voters maps a user ID to the index of the option the user voted for.
	// A missing entry means the user has not voted.
	Voters map[string]int
}

// Snapshot is a read-only view of a poll at a given point in time.
type Snapshot struct {
	ID         int      `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	VoteCounts []int    `json:"vote_counts"`
	Creator    string   `json:"creator"`
	CreatedAt  int64    `json:"created_at"`
	EndAt      int64    `json:"end_at"`
	Active     bool     `json:"active"` // Active is true if the poll can still be voted on
	Ended      bool     `json:"ended"`  // Ended is true if the creator ended the poll
	TotalVotes int      `json:"total_votes"`
}

// Winner is the leading option of a poll.
type Winner struct {
	Index int    `json:"option_index"`
	Text  string `json:"option_text"`
	Votes int    `json:"vote_count"`
}

// Validate checks the input of a new poll. The first failing check wins.
func Validate(question string, options []string, durationMinutes int) error {
	if question == "" {
		return validationError(ReasonEmptyQuestion, &i18n.Message{
			ID:    "poll.create.emptyQuestion",
			Other: "The question must not be empty.",
		}, nil)
	}
	if len(options) < MinOptions {
		return validationError(ReasonTooFewOptions, &i18n.Message{
			ID:    "poll.create.tooFewOptions",
			Other: "A poll needs at least {{.Min}} options, you specified {{.Options}}.",
		}, map[string]interface{}{"Min": MinOptions, "Options": len(options)})
	}
	if len(options) > MaxOptions {
		return validationError(ReasonTooManyOptions, &i18n.Message{
			ID:    "poll.create.tooManyOptions",
			Other: "A poll can have at most {{.Max}} options, you specified {{.Options}}.",
		}, map[string]interface{}{"Max": MaxOptions, "Options": len(options)})
	}
	if durationMinutes <= 0 {
		return validationError(ReasonDurationTooShort, &i18n.Message{
			ID:    "poll.create.durationTooShort",
			Other: "The duration must be at least one minute.",
		}, nil)
	}
	if durationMinutes > MaxDurationMinutes {
		return validationError(ReasonDurationTooLong, &i18n.Message{
			ID:    "poll.create.durationTooLong",
			Other: "The duration must not exceed {{.Max}} minutes (7 days).",
		}, map[string]interface{}{"Max": MaxDurationMinutes})
	}
	for i, o := range options {
		if o == "" {
			return validationError(ReasonEmptyOption, &i18n.Message{
				ID:    "poll.create.emptyOption",
				Other: "Option {{.Index}} must not be empty.",
			}, map[string]interface{}{"Index": i})
		}
	}
	return nil
}

// NewPoll creates a new active poll with the given parameter.
func NewPoll(id int, creator, question string, options []string, durationMinutes int, now time.Time) (*Poll, error) {
	if creator == "" {
		return nil, MissingIdentityError()
	}
	if err := Validate(question, options, durationMinutes); err != nil {
		return nil, err
	}

	createdAt := now.UnixMilli()
	p := &Poll{
		ID:         id,
		Question:   question,
		Options:    make([]string, len(options)),
		VoteCounts: make([]int, len(options)),
		Creator:    creator,
		CreatedAt:  createdAt,
		EndAt:      createdAt + int64(durationMinutes)*time.Minute.Milliseconds(),
		Active:     true,
		Voters:     map[string]int{},
	}
	copy(p.Options, options)
	return p, nil
}

// IsEffectivelyActive returns true if the poll was not ended and its end time has not passed.
func (p *Poll) IsEffectivelyActive(now time.Time) bool {
	return p.Active && now.UnixMilli() < p.EndAt
}

// Vote records the vote of a user. Exactly one vote count is incremented.
func (p *Poll) Vote(userID string, index int, now time.Time) error {
	if userID == "" {
		return MissingIdentityError()
	}
	if !p.IsEffectivelyActive(now) {
		return notActiveError(p.ID)
	}
	if p.HasVoted(userID) {
		return duplicateVoteError(p.ID)
	}
	if index < 0 || index >= len(p.Options) {
		return invalidOptionError(index, len(p.Options))
	}

	if p.Voters == nil {
		p.Voters = map[string]int{}
	}
	p.Voters[userID] = index
	p.VoteCounts[index]++
	return nil
}

// End marks the poll as ended. Only the creator can end a poll, and only once.
// Ending a poll whose end time already passed is allowed.
func (p *Poll) End(userID string) error {
	if userID == "" {
		return MissingIdentityError()
	}
	if userID != p.Creator {
		return notCreatorError(p.ID)
	}
	if !p.Active {
		return alreadyEndedError(p.ID)
	}
	p.Active = false
	return nil
}

// HasVoted return true if a given user has voted in this poll
func (p *Poll) HasVoted(userID string) bool {
	_, ok := p.Voters[userID]
	return ok
}

// Choice returns the option index a user voted for.
func (p *Poll) Choice(userID string) (int, error) {
	index, ok := p.Voters[userID]
	if !ok {
		return 0, noVoteError(p.ID)
	}
	return index, nil
}

// TotalVotes returns the sum of all vote counts.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, c := range p.VoteCounts {
		total += c
	}
	return total
}

// Winner returns the leftmost option with the highest vote count.
// Without votes the first option wins with zero votes.
func (p *Poll) Winner() Winner {
	w := Winner{}
	for i, c := range p.VoteCounts {
		if i == 0 || c > w.Votes {
			w.Index = i
			w.Votes = c
		}
	}
	if len(p.Options) > 0 {
		w.Text = p.Options[w.Index]
	}
	return w
}

// Snapshot returns a read-only copy of the poll. Active is derived from now.
func (p *Poll) Snapshot(now time.Time) *Snapshot {
	s := &Snapshot{
		ID:         p.ID,
		Question:   p.Question,
		Options:    make([]string, len(p.Options)),
		VoteCounts: make([]int, len(p.VoteCounts)),
		Creator:    p.Creator,
		CreatedAt:  p.CreatedAt,
		EndAt:      p.EndAt,
		Active:     p.IsEffectivelyActive(now),
		Ended:      !p.Active,
		TotalVotes: p.TotalVotes(),
	}
	copy(s.Options, p.Options)
	copy(s.VoteCounts, p.VoteCounts)
	return s
}

// EncodeToByte returns a poll as a byte array
func (p *Poll) EncodeToByte() []byte {
	b, _ := json.Marshal(p)
	return b
}

// DecodePollFromByte tries to create a poll from a byte array
func DecodePollFromByte(b []byte) *Poll {
	p := Poll{}
	err := json.Unmarshal(b, &p)
	if err != nil {
		return nil
	}
	if p.Voters == nil {
		p.Voters = map[string]int{}
	}
	return &p
}

// Copy deep copies a poll
func (p *Poll) Copy() *Poll {
	p2 := new(Poll)
	*p2 = *p
	p2.Options = make([]string, len(p.Options))
	copy(p2.Options, p.Options)
	p2.VoteCounts = make([]int, len(p.VoteCounts))
	copy(p2.VoteCounts, p.VoteCounts)
	p2.Voters = make(map[string]int, len(p.Voters))
	for k, v := range p.Voters {
		p2.Voters[k] = v
	}
	return p2
}
