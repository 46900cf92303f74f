package plugin

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/poll"
)

const (
	iconFilename = "logo_dark.svg"

	userIDHeader = "Mattermost-User-ID"
)

var (
	infoMessage = "Thanks for using Poll Ledger v" + manifest.Version + "\n"

	responseInvalidRequest = &i18n.Message{
		ID:    "response.error.invalidRequest",
		Other: "The request body is not a valid poll.",
	}
)

type createPollRequest struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	DurationMinutes int      `json:"duration_minutes"`
}

type createPollResponse struct {
	PollID int `json:"poll_id"`
}

type countResponse struct {
	Count int `json:"count"`
}

type activePollsResponse struct {
	PollIDs []int `json:"poll_ids"`
}

type hasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}

type choiceResponse struct {
	OptionIndex int `json:"option_index"`
}

// errorResponse is returned for every rejected request.
type errorResponse struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

const (
	kindInternal       = "internal_error"
	kindInvalidRequest = "invalid_request"
)

// InitAPI initializes the REST API
func (p *LedgerPlugin) InitAPI() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", p.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/"+iconFilename, p.handleLogo).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/" + CurrentAPIVersion).Subrouter()
	apiV1.Use(checkAuthenticity)
	apiV1.HandleFunc("/configuration", p.handlePluginConfiguration).Methods(http.MethodGet)

	apiV1.HandleFunc("/polls", p.handleCreatePoll).Methods(http.MethodPost)
	apiV1.HandleFunc("/polls/count", p.handlePollCount).Methods(http.MethodGet)
	apiV1.HandleFunc("/polls/active", p.handleActivePolls).Methods(http.MethodGet)

	apiV1.HandleFunc("/polls/{id:[0-9]+}", p.handleGetPoll).Methods(http.MethodGet)

	pollRouter := apiV1.PathPrefix("/polls/{id:[0-9]+}").Subrouter()
	pollRouter.HandleFunc("/vote/{optionIndex:-?[0-9]+}", p.handleVote).Methods(http.MethodPost)
	pollRouter.HandleFunc("/end", p.handleEndPoll).Methods(http.MethodPost)
	pollRouter.HandleFunc("/winner", p.handleWinner).Methods(http.MethodGet)
	pollRouter.HandleFunc("/voters/{userID}", p.handleHasVoted).Methods(http.MethodGet)
	pollRouter.HandleFunc("/voters/{userID}/choice", p.handleVoterChoice).Methods(http.MethodGet)
	return r
}

func (p *LedgerPlugin) ServeHTTP(c *plugin.Context, w http.ResponseWriter, r *http.Request) {
	p.API.LogDebug("New request:", "Host", r.Host, "RequestURI", r.RequestURI, "Method", r.Method)
	p.router.ServeHTTP(w, r)
}

func (p *LedgerPlugin) handleInfo(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, infoMessage)
}

func (p *LedgerPlugin) handleLogo(w http.ResponseWriter, r *http.Request) {
	bundlePath, err := p.API.GetBundlePath()
	if err != nil {
		p.API.LogWarn("failed to get bundle path", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=604800")
	http.ServeFile(w, r, filepath.Join(bundlePath, "assets", iconFilename))
}

func (p *LedgerPlugin) handlePluginConfiguration(w http.ResponseWriter, r *http.Request) {
	p.writeJSON(w, http.StatusOK, p.getConfiguration())
}

func checkAuthenticity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userIDHeader) == "" {
			http.Error(w, "not authorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (p *LedgerPlugin) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)

	var request createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		p.API.LogDebug("Failed to decode poll", "error", err.Error())
		p.writeJSON(w, http.StatusBadRequest, &errorResponse{
			Kind:    kindInvalidRequest,
			Message: p.localize(userID, responseInvalidRequest, nil),
		})
		return
	}

	pollID, err := p.ledger.CreatePoll(userID, request.Question, request.Options, request.DurationMinutes)
	if err != nil {
		p.writeError(w, userID, err)
		return
	}
	p.writeJSON(w, http.StatusCreated, &createPollResponse{PollID: pollID})
}

func (p *LedgerPlugin) handlePollCount(w http.ResponseWriter, r *http.Request) {
	count, err := p.ledger.PollCount()
	if err != nil {
		p.writeError(w, r.Header.Get(userIDHeader), err)
		return
	}
	p.writeJSON(w, http.StatusOK, &countResponse{Count: count})
}

func (p *LedgerPlugin) handleActivePolls(w http.ResponseWriter, r *http.Request) {
	ids, err := p.ledger.GetActivePolls()
	if err != nil {
		p.writeError(w, r.Header.Get(userIDHeader), err)
		return
	}
	p.writeJSON(w, http.StatusOK, &activePollsResponse{PollIDs: ids})
}

func (p *LedgerPlugin) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	pollID := pollIDFromVars(mux.Vars(r))

	snapshot, err := p.ledger.GetPoll(pollID)
	if err != nil {
		p.writeError(w, userID, err)
		return
	}
	p.writeJSON(w, http.StatusOK, snapshot)
}

func (p *LedgerPlugin) handleVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	vars := mux.Vars(r)
	pollID := pollIDFromVars(vars)
	optionIndex, err := strconv.Atoi(vars["optionIndex"])
	if err != nil {
		// Out of int range, no poll has such an option.
		optionIndex = -1
	}

	if err := p.ledger.Vote(userID, pollID, optionIndex); err != nil {
		p.writeError(w, userID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *LedgerPlugin) handleEndPoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	pollID := pollIDFromVars(mux.Vars(r))

	if err := p.ledger.EndPoll(userID, pollID); err != nil {
		p.writeError(w, userID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *LedgerPlugin) handleWinner(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	pollID := pollIDFromVars(mux.Vars(r))

	winner, err := p.ledger.GetWinner(pollID)
	if err != nil {
		p.writeError(w, userID, err)
		return
	}
	p.writeJSON(w, http.StatusOK, winner)
}

func (p *LedgerPlugin) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	vars := mux.Vars(r)
	pollID := pollIDFromVars(vars)

	voted, err := p.ledger.HasVoted(pollID, vars["userID"])
	if err != nil {
		p.writeError(w, userID, err)
		return
	}
	p.writeJSON(w, http.StatusOK, &hasVotedResponse{HasVoted: voted})
}

func (p *LedgerPlugin) handleVoterChoice(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	vars := mux.Vars(r)
	pollID := pollIDFromVars(vars)

	index, err := p.ledger.GetVoterChoice(pollID, vars["userID"])
	if err != nil {
		p.writeError(w, userID, err)
		return
	}
	p.writeJSON(w, http.StatusOK, &choiceResponse{OptionIndex: index})
}

// pollIDFromVars returns the poll id of the route. Ids that do not fit into an int
// are mapped to 0, which is never assigned.
func pollIDFromVars(vars map[string]string) int {
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		return 0
	}
	return id
}

// statusForKind maps a ledger rejection to a HTTP status code.
func statusForKind(kind poll.Kind) int {
	switch kind {
	case poll.ErrValidation, poll.ErrInvalidOption:
		return http.StatusBadRequest
	case poll.ErrNotFound, poll.ErrNoVote:
		return http.StatusNotFound
	case poll.ErrAuthorization:
		return http.StatusForbidden
	case poll.ErrNotActive, poll.ErrDuplicateVote, poll.ErrAlreadyEnded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an errorResponse. Infrastructure errors are logged and
// answered with a generic message.
func (p *LedgerPlugin) writeError(w http.ResponseWriter, userID string, err error) {
	var pollErr *poll.Error
	if !errors.As(err, &pollErr) {
		p.API.LogWarn("Failed to handle request", "error", err.Error())
		p.writeJSON(w, http.StatusInternalServerError, &errorResponse{
			Kind:    kindInternal,
			Message: p.localize(userID, responseGenericError, nil),
		})
		return
	}

	p.writeJSON(w, statusForKind(pollErr.Kind), &errorResponse{
		Kind:    string(pollErr.Kind),
		Reason:  string(pollErr.Reason),
		Message: p.localizeError(userID, pollErr),
	})
}

func (p *LedgerPlugin) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		p.API.LogWarn("failed to encode response", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		p.API.LogWarn("failed to write response", "error", err.Error())
	}
}
