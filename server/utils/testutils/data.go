package testutils

import (
	"time"

	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/matterpoll/ledger/server/poll"
)

// GetPollID returns a static Poll ID.
func GetPollID() int {
	return 1
}

// GetSiteURL returns a static Site URL.
func GetSiteURL() string {
	return "https://example.org"
}

// GetNow returns a static point in time, 1234567890000 in unix millis.
func GetNow() time.Time {
	return time.UnixMilli(1234567890000)
}

// GetClock returns a clock that always returns GetNow.
func GetClock() func() time.Time {
	return GetNow
}

// GetServerConfig return a static server config.
func GetServerConfig() *model.Config {
	siteURL := GetSiteURL()
	defaultClientLocale := "en"
	return &model.Config{
		ServiceSettings: model.ServiceSettings{
			SiteURL: &siteURL,
		},
		LocalizationSettings: model.LocalizationSettings{
			DefaultClientLocale: &defaultClientLocale,
		},
	}
}

// GetPoll returns an active Poll with three Options and no votes, ending one hour after GetNow.
func GetPoll() *poll.Poll {
	return &poll.Poll{
		ID:         GetPollID(),
		Question:   "Question",
		Options:    []string{"Answer 1", "Answer 2", "Answer 3"},
		VoteCounts: []int{0, 0, 0},
		Creator:    "userID1",
		CreatedAt:  GetNow().UnixMilli(),
		EndAt:      GetNow().Add(time.Hour).UnixMilli(),
		Active:     true,
		Voters:     map[string]int{},
	}
}

// GetPollWithVotes returns an active Poll with three Options and four votes.
func GetPollWithVotes() *poll.Poll {
	p := GetPoll()
	p.VoteCounts = []int{3, 1, 0}
	p.Voters = map[string]int{
		"userID1": 0,
		"userID2": 0,
		"userID3": 0,
		"userID4": 1,
	}
	return p
}

// GetEndedPoll returns a Poll with votes that was ended by its creator.
func GetEndedPoll() *poll.Poll {
	p := GetPollWithVotes()
	p.Active = false
	return p
}

// GetExpiredPoll returns a Poll with votes whose end time passed before GetNow.
func GetExpiredPoll() *poll.Poll {
	p := GetPollWithVotes()
	p.CreatedAt = GetNow().Add(-2 * time.Hour).UnixMilli()
	p.EndAt = GetNow().Add(-time.Hour).UnixMilli()
	return p
}
