package plugin

import (
	"strconv"

	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/matterpoll/ledger/server/poll"
)

// Notify publishes a ledger event to all connected clients.
// Newly created polls are also scheduled for their expiry event.
func (p *LedgerPlugin) Notify(event poll.Event) {
	p.API.PublishWebSocketEvent(event.Name(), event.ToMap(), &model.WebsocketBroadcast{})

	if created, ok := event.(*poll.PollCreated); ok && p.expiry != nil {
		p.expiry.Schedule(created.PollID, created.EndAt)
	}
}

// expiredKeyPrefix marks polls whose expiry event was already published.
// Every node schedules the expiry of all active polls, the first one to claim the key publishes.
const expiredKeyPrefix = "expired_"

// publishExpiry emits poll_expired for a poll whose end time passed, unless its
// creator ended it before. The event is published at most once across the cluster.
func (p *LedgerPlugin) publishExpiry(pollID int, endAt int64) {
	if !p.getConfiguration().ExpiryEvents {
		return
	}

	snapshot, err := p.ledger.GetPoll(pollID)
	if err != nil {
		p.API.LogWarn("Failed to get expired poll", "pollID", pollID, "error", err.Error())
		return
	}
	if snapshot.Ended {
		return
	}

	claimed, appErr := p.API.KVSetWithOptions(expiredKeyPrefix+strconv.Itoa(pollID), []byte(strconv.FormatInt(endAt, 10)), model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: nil,
	})
	if appErr != nil {
		p.API.LogWarn("Failed to claim expiry event", "pollID", pollID, "error", appErr.Error())
		return
	}
	if !claimed {
		return
	}

	p.Notify(&poll.PollExpired{
		PollID: pollID,
		EndAt:  endAt,
	})
}

// scheduleActivePolls schedules the expiry event of every poll that is still open for voting.
func (p *LedgerPlugin) scheduleActivePolls() error {
	ids, err := p.ledger.GetActivePolls()
	if err != nil {
		return err
	}
	for _, id := range ids {
		snapshot, err := p.ledger.GetPoll(id)
		if err != nil {
			return err
		}
		p.expiry.Schedule(id, snapshot.EndAt)
	}
	return nil
}
