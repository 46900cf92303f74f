package poll

import (
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/ledger/server/utils"
)

// Kind identifies why the ledger rejected a call.
// Kinds are comparable and can be matched with errors.Is.
type Kind string

func (k Kind) Error() string { return string(k) }

// Rejection kinds.
const (
	ErrValidation    Kind = "validation_error"
	ErrNotFound      Kind = "not_found"
	ErrNotActive     Kind = "not_active"
	ErrDuplicateVote Kind = "duplicate_vote"
	ErrInvalidOption Kind = "invalid_option"
	ErrAuthorization Kind = "authorization_error"
	ErrAlreadyEnded  Kind = "already_ended"
	ErrNoVote        Kind = "no_vote"
)

// Validation reasons, in the order they are checked.
const (
	ReasonEmptyQuestion    Kind = "empty_question"
	ReasonTooFewOptions    Kind = "too_few_options"
	ReasonTooManyOptions   Kind = "too_many_options"
	ReasonDurationTooShort Kind = "duration_too_short"
	ReasonDurationTooLong  Kind = "duration_too_long"
	ReasonEmptyOption      Kind = "empty_option"
	ReasonMissingIdentity  Kind = "missing_identity"
)

var kinds = map[string]Kind{
	string(ErrValidation):    ErrValidation,
	string(ErrNotFound):      ErrNotFound,
	string(ErrNotActive):     ErrNotActive,
	string(ErrDuplicateVote): ErrDuplicateVote,
	string(ErrInvalidOption): ErrInvalidOption,
	string(ErrAuthorization): ErrAuthorization,
	string(ErrAlreadyEnded):  ErrAlreadyEnded,
	string(ErrNoVote):        ErrNoVote,
}

// ParseKind returns the Kind with the given name.
func ParseKind(s string) (Kind, bool) {
	k, ok := kinds[s]
	return k, ok
}

// Error is a rejection of a ledger call. The state of the ledger is unchanged
// whenever an Error is returned.
type Error struct {
	Kind    Kind
	Reason  Kind // empty unless Kind is ErrValidation or ErrAuthorization
	Message *i18n.Message
	Data    map[string]interface{}
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return string(e.Kind)
}

// Unwrap returns the kind so that errors.Is(err, poll.ErrNotFound) works.
func (e *Error) Unwrap() error { return e.Kind }

// Is reports whether target is the kind or the reason of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	return k == e.Kind || (e.Reason != "" && k == e.Reason)
}

// ErrorMessage returns the localizable message of e.
func (e *Error) ErrorMessage() *utils.ErrorMessage {
	return &utils.ErrorMessage{
		Message: e.Message,
		Data:    e.Data,
	}
}

func validationError(reason Kind, m *i18n.Message, data map[string]interface{}) *Error {
	return &Error{Kind: ErrValidation, Reason: reason, Message: m, Data: data}
}

// NotFoundError is returned for ids that were never assigned.
func NotFoundError(pollID int) *Error {
	return &Error{
		Kind: ErrNotFound,
		Message: &i18n.Message{
			ID:    "poll.notFound",
			Other: "Poll {{.PollID}} does not exist.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}

// MissingIdentityError is returned when the host did not supply a caller identity.
func MissingIdentityError() *Error {
	return &Error{
		Kind:   ErrAuthorization,
		Reason: ReasonMissingIdentity,
		Message: &i18n.Message{
			ID:    "poll.identity.missing",
			Other: "The request does not carry a user identity.",
		},
	}
}

func notActiveError(pollID int) *Error {
	return &Error{
		Kind: ErrNotActive,
		Message: &i18n.Message{
			ID:    "poll.vote.notActive",
			Other: "Poll {{.PollID}} is no longer open for voting.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}

func duplicateVoteError(pollID int) *Error {
	return &Error{
		Kind: ErrDuplicateVote,
		Message: &i18n.Message{
			ID:    "poll.vote.duplicate",
			Other: "You have already voted in poll {{.PollID}}.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}

func invalidOptionError(index, options int) *Error {
	return &Error{
		Kind: ErrInvalidOption,
		Message: &i18n.Message{
			ID:    "poll.vote.invalidOption",
			Other: "Option {{.Index}} does not exist. Pick an option between 0 and {{.Last}}.",
		},
		Data: map[string]interface{}{"Index": index, "Last": options - 1},
	}
}

func notCreatorError(pollID int) *Error {
	return &Error{
		Kind: ErrAuthorization,
		Message: &i18n.Message{
			ID:    "poll.end.notCreator",
			Other: "Only the creator of poll {{.PollID}} is allowed to end it.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}

func alreadyEndedError(pollID int) *Error {
	return &Error{
		Kind: ErrAlreadyEnded,
		Message: &i18n.Message{
			ID:    "poll.end.alreadyEnded",
			Other: "Poll {{.PollID}} has already ended.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}

func noVoteError(pollID int) *Error {
	return &Error{
		Kind: ErrNoVote,
		Message: &i18n.Message{
			ID:    "poll.choice.noVote",
			Other: "No vote was recorded for this user in poll {{.PollID}}.",
		},
		Data: map[string]interface{}{"PollID": pollID},
	}
}
