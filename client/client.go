// Package client is a Go client for the REST API of the ledger plugin.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"

	root "github.com/matterpoll/ledger"
	"github.com/matterpoll/ledger/server/poll"
)

const apiVersion = "v1"

// maxErrorBody limits how much of an error response is read.
const maxErrorBody = 1 << 20

// Client calls the ledger on behalf of the user the token belongs to.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a Client for the Mattermost server at siteURL.
// token is a session or personal access token.
func New(siteURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(siteURL, "/") + "/plugins/" + root.Manifest.Id + "/api/" + apiVersion,
		token:      token,
		httpClient: cleanhttp.DefaultPooledClient(),
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

type createPollRequest struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	DurationMinutes int      `json:"duration_minutes"`
}

// CreatePoll creates a poll and returns its id.
func (c *Client) CreatePoll(ctx context.Context, question string, options []string, durationMinutes int) (int, error) {
	var response struct {
		PollID int `json:"poll_id"`
	}
	err := c.do(ctx, http.MethodPost, "/polls", &createPollRequest{
		Question:        question,
		Options:         options,
		DurationMinutes: durationMinutes,
	}, &response)
	if err != nil {
		return 0, err
	}
	return response.PollID, nil
}

// Vote casts the vote of the calling user.
func (c *Client) Vote(ctx context.Context, pollID, optionIndex int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/polls/%d/vote/%d", pollID, optionIndex), nil, nil)
}

// EndPoll ends a poll. Only the creator of the poll can end it.
func (c *Client) EndPoll(ctx context.Context, pollID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/polls/%d/end", pollID), nil, nil)
}

// GetPoll returns a snapshot of a poll.
func (c *Client) GetPoll(ctx context.Context, pollID int) (*poll.Snapshot, error) {
	var snapshot poll.Snapshot
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/polls/%d", pollID), nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// HasVoted returns true if userID voted in the poll.
func (c *Client) HasVoted(ctx context.Context, pollID int, userID string) (bool, error) {
	var response struct {
		HasVoted bool `json:"has_voted"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/polls/%d/voters/%s", pollID, url.PathEscape(userID)), nil, &response); err != nil {
		return false, err
	}
	return response.HasVoted, nil
}

// GetVoterChoice returns the option index userID voted for.
func (c *Client) GetVoterChoice(ctx context.Context, pollID int, userID string) (int, error) {
	var response struct {
		OptionIndex int `json:"option_index"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/polls/%d/voters/%s/choice", pollID, url.PathEscape(userID)), nil, &response); err != nil {
		return 0, err
	}
	return response.OptionIndex, nil
}

// GetActivePolls returns the ids of all polls that can still be voted on, ascending.
func (c *Client) GetActivePolls(ctx context.Context) ([]int, error) {
	var response struct {
		PollIDs []int `json:"poll_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/polls/active", nil, &response); err != nil {
		return nil, err
	}
	if response.PollIDs == nil {
		return []int{}, nil
	}
	return response.PollIDs, nil
}

// GetWinner returns the leading option of a poll.
func (c *Client) GetWinner(ctx context.Context, pollID int) (*poll.Winner, error) {
	var winner poll.Winner
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/polls/%d/winner", pollID), nil, &winner); err != nil {
		return nil, err
	}
	return &winner, nil
}

// PollCount returns the highest assigned poll id.
func (c *Client) PollCount(ctx context.Context) (int, error) {
	var response struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/polls/count", nil, &response); err != nil {
		return 0, err
	}
	return response.Count, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set(model.HeaderAuth, model.HeaderBearer+" "+c.token)
	req.Header.Set(model.HeaderRequestedWith, model.HeaderRequestedWithXML)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "%s %s", method, path)
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response of %s %s", method, path)
	}
	return nil
}
