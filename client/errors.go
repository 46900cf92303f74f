package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
)

// LedgerError is a call the ledger rejected. The ledger state did not change.
// errors.Is matches the poll kind and, for validation errors, the reason.
type LedgerError struct {
	StatusCode int
	Kind       poll.Kind
	Reason     poll.Kind
	// Message is the localized explanation of the server, meant to be shown verbatim.
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

// Unwrap returns the kind so that errors.Is(err, poll.ErrDuplicateVote) works.
func (e *LedgerError) Unwrap() error { return e.Kind }

// Is reports whether target is the kind or the reason of e.
func (e *LedgerError) Is(target error) bool {
	k, ok := target.(poll.Kind)
	if !ok {
		return false
	}
	return k == e.Kind || (e.Reason != "" && k == e.Reason)
}

// TransientError is a failure of the host rather than a rejection by the ledger.
// The call may or may not have been applied and can be resubmitted.
type TransientError struct {
	StatusCode int // 0 if no response was received
	Message    string
	Err        error
}

func (e *TransientError) Error() string {
	switch {
	case e.Err != nil:
		return "transient failure: " + e.Err.Error()
	case e.Message != "":
		return fmt.Sprintf("transient failure: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("transient failure: status %d", e.StatusCode)
	}
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient returns true if err is a host failure that may succeed when retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func isTransientStatus(status int) bool {
	return status >= http.StatusInternalServerError ||
		status == http.StatusUnauthorized ||
		status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests
}

func decodeError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &TransientError{StatusCode: resp.StatusCode, Err: err}
	}

	var body errorResponse
	_ = json.Unmarshal(b, &body)

	if kind, ok := poll.ParseKind(body.Kind); ok {
		return &LedgerError{
			StatusCode: resp.StatusCode,
			Kind:       kind,
			Reason:     poll.Kind(body.Reason),
			Message:    body.Message,
		}
	}

	if isTransientStatus(resp.StatusCode) {
		return &TransientError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	if body.Message != "" {
		return errors.Errorf("unexpected response status %d: %s", resp.StatusCode, body.Message)
	}
	return errors.Errorf("unexpected response status %d", resp.StatusCode)
}
