package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matterpoll/ledger/client"
	"github.com/matterpoll/ledger/server/poll"
)

const pathPrefix = "/plugins/com.github.matterpoll.ledger/api/v1"

type request struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

// setupTestServer answers every request with status and body and records the request.
func setupTestServer(t *testing.T, status int, body string) (*client.Client, *request) {
	t.Helper()
	recorded := &request{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		recorded.Method = r.Method
		recorded.Path = r.URL.EscapedPath()
		recorded.Body = string(b)
		recorded.Header = r.Header.Clone()

		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return client.New(server.URL+"/", "token1"), recorded
}

func TestClientRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("create poll", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusCreated, `{"poll_id":4}`)

		id, err := c.CreatePoll(ctx, "Question", []string{"A", "B"}, 30)
		require.NoError(t, err)
		assert.Equal(t, 4, id)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathPrefix+"/polls", r.Path)
		assert.JSONEq(t, `{"question":"Question","options":["A","B"],"duration_minutes":30}`, r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "BEARER token1", r.Header.Get("Authorization"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
	})
	t.Run("vote", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusNoContent, "")

		require.NoError(t, c.Vote(ctx, 2, 1))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathPrefix+"/polls/2/vote/1", r.Path)
		assert.Empty(t, r.Body)
	})
	t.Run("end poll", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusNoContent, "")

		require.NoError(t, c.EndPoll(ctx, 2))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathPrefix+"/polls/2/end", r.Path)
	})
	t.Run("get poll", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"id":1,"question":"Q","options":["A","B"],"vote_counts":[2,0],`+
			`"creator":"userID1","created_at":10,"end_at":20,"active":true,"ended":false,"total_votes":2}`)

		s, err := c.GetPoll(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &poll.Snapshot{
			ID:         1,
			Question:   "Q",
			Options:    []string{"A", "B"},
			VoteCounts: []int{2, 0},
			Creator:    "userID1",
			CreatedAt:  10,
			EndAt:      20,
			Active:     true,
			TotalVotes: 2,
		}, s)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, pathPrefix+"/polls/1", r.Path)
	})
	t.Run("has voted", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"has_voted":true}`)

		voted, err := c.HasVoted(ctx, 3, "user/1")
		require.NoError(t, err)
		assert.True(t, voted)
		assert.Equal(t, pathPrefix+"/polls/3/voters/user%2F1", r.Path)
	})
	t.Run("voter choice", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"option_index":2}`)

		index, err := c.GetVoterChoice(ctx, 3, "userID2")
		require.NoError(t, err)
		assert.Equal(t, 2, index)
		assert.Equal(t, pathPrefix+"/polls/3/voters/userID2/choice", r.Path)
	})
	t.Run("active polls", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"poll_ids":[1,3]}`)

		ids, err := c.GetActivePolls(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, ids)
		assert.Equal(t, pathPrefix+"/polls/active", r.Path)
	})
	t.Run("no active polls", func(t *testing.T) {
		c, _ := setupTestServer(t, http.StatusOK, `{"poll_ids":null}`)

		ids, err := c.GetActivePolls(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{}, ids)
	})
	t.Run("winner", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"option_index":0,"option_text":"JS","vote_count":2}`)

		w, err := c.GetWinner(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &poll.Winner{Index: 0, Text: "JS", Votes: 2}, w)
		assert.Equal(t, pathPrefix+"/polls/1/winner", r.Path)
	})
	t.Run("poll count", func(t *testing.T) {
		c, r := setupTestServer(t, http.StatusOK, `{"count":7}`)

		count, err := c.PollCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, count)
		assert.Equal(t, pathPrefix+"/polls/count", r.Path)
	})
	t.Run("invalid response body", func(t *testing.T) {
		c, _ := setupTestServer(t, http.StatusOK, `{"count":`)

		_, err := c.PollCount(ctx)
		assert.Error(t, err)
		assert.False(t, client.IsTransient(err))
	})
}

func TestClientErrors(t *testing.T) {
	for name, test := range map[string]struct {
		Status            int
		Body              string
		ExpectedKind      poll.Kind
		ExpectedReason    poll.Kind
		ExpectedMessage   string
		ExpectedTransient bool
	}{
		"duplicate vote": {
			Status:          http.StatusConflict,
			Body:            `{"kind":"duplicate_vote","message":"You have already voted in poll 1."}`,
			ExpectedKind:    poll.ErrDuplicateVote,
			ExpectedMessage: "You have already voted in poll 1.",
		},
		"validation error with reason": {
			Status:          http.StatusBadRequest,
			Body:            `{"kind":"validation_error","reason":"too_few_options","message":"A poll needs at least 2 options, you specified 1."}`,
			ExpectedKind:    poll.ErrValidation,
			ExpectedReason:  poll.ReasonTooFewOptions,
			ExpectedMessage: "A poll needs at least 2 options, you specified 1.",
		},
		"not found": {
			Status:          http.StatusNotFound,
			Body:            `{"kind":"not_found","message":"Poll 9 does not exist."}`,
			ExpectedKind:    poll.ErrNotFound,
			ExpectedMessage: "Poll 9 does not exist.",
		},
		"internal error": {
			Status:            http.StatusInternalServerError,
			Body:              `{"kind":"internal_error","message":"Something went wrong. Please try again later."}`,
			ExpectedTransient: true,
		},
		"bad gateway without body": {
			Status:            http.StatusBadGateway,
			ExpectedTransient: true,
		},
		"unauthorized": {
			Status:            http.StatusUnauthorized,
			Body:              "not authorized\n",
			ExpectedTransient: true,
		},
		"rate limited": {
			Status:            http.StatusTooManyRequests,
			ExpectedTransient: true,
		},
		"invalid request": {
			Status: http.StatusBadRequest,
			Body:   `{"kind":"invalid_request","message":"The request body is not a valid poll."}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := setupTestServer(t, test.Status, test.Body)

			err := c.Vote(context.Background(), 1, 0)
			require.Error(t, err)
			assert.Equal(t, test.ExpectedTransient, client.IsTransient(err))

			var ledgerErr *client.LedgerError
			if test.ExpectedKind == "" {
				assert.False(t, errors.As(err, &ledgerErr))
				return
			}

			require.True(t, errors.As(err, &ledgerErr))
			assert.Equal(t, test.Status, ledgerErr.StatusCode)
			assert.Equal(t, test.ExpectedMessage, err.Error())
			assert.True(t, errors.Is(err, test.ExpectedKind))
			if test.ExpectedReason != "" {
				assert.True(t, errors.Is(err, test.ExpectedReason))
			}
		})
	}

	t.Run("server unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		c := client.New(server.URL, "token1")

		_, err := c.PollCount(context.Background())
		assert.True(t, client.IsTransient(err))
	})
	t.Run("canceled context", func(t *testing.T) {
		c, _ := setupTestServer(t, http.StatusOK, `{"count":1}`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.PollCount(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, client.IsTransient(err))
	})
}

func TestErrorResponseShape(t *testing.T) {
	// The error body written by the plugin decodes into a LedgerError.
	b, err := json.Marshal(map[string]string{"kind": "no_vote", "message": "none"})
	require.NoError(t, err)

	c, _ := setupTestServer(t, http.StatusNotFound, string(b))
	_, err = c.GetVoterChoice(context.Background(), 1, "userID9")
	assert.True(t, errors.Is(err, poll.ErrNoVote))
}
