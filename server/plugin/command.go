package plugin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/ledger/server/utils"
)

const (
	responseUsername = "Poll Ledger"

	defaultDurationMinutes = 60

	durationFlag = "duration"
)

var (
	commandDefaultYes = &i18n.Message{
		ID:    "command.default.yes",
		Other: "Yes",
	}
	commandDefaultNo = &i18n.Message{
		ID:    "command.default.no",
		Other: "No",
	}

	commandAutoCompleteDesc = &i18n.Message{
		ID:    "command.autoComplete.desc",
		Other: "Create a poll, vote in it or look at its results",
	}
	commandAutoCompleteHint = &i18n.Message{
		ID:    "command.autoComplete.hint",
		Other: "[Question] [Answer 1] [Answer 2]... [--duration=minutes]",
	}

	commandHelpText = &i18n.Message{
		ID: "command.help.text",
		Other: "To create a poll with the answer options \"{{.Yes}}\" and \"{{.No}}\" type `/{{.Trigger}} \"Question\"`.\n" +
			"You can customise the options by typing `/{{.Trigger}} \"Question\" \"Answer 1\" \"Answer 2\" \"Answer 3\"`.\n" +
			"A poll is open for {{.Duration}} minutes unless you add `--duration=<minutes>`.\n" +
			"- `/{{.Trigger}} vote <poll> <option>`: Vote for an option, the first option is 0\n" +
			"- `/{{.Trigger}} end <poll>`: End a poll you created\n" +
			"- `/{{.Trigger}} show <poll>`: Show the current results of a poll\n" +
			"- `/{{.Trigger}} active`: List all polls that are open for voting",
	}

	commandInputError = &i18n.Message{
		ID:    "command.error.input",
		Other: "Invalid input. Try `/{{.Trigger}} \"Question\"` or `/{{.Trigger}} help`.",
	}
	commandInvalidDuration = &i18n.Message{
		ID:    "command.error.invalidDuration",
		Other: "Invalid duration `{{.Duration}}`, it must be a number of minutes.",
	}
	commandUnknownFlag = &i18n.Message{
		ID:    "command.error.unknownFlag",
		Other: "Unknown flag `--{{.Flag}}`.",
	}

	commandCreated = &i18n.Message{
		ID:    "command.create.success",
		Other: "Created poll {{.PollID}}: **{{.Question}}**\n{{.Options}}",
	}
	commandVoteCounted = &i18n.Message{
		ID:    "command.vote.counted",
		Other: "Your vote has been counted.",
	}
	commandEndSuccess = &i18n.Message{
		ID:    "command.end.success",
		Other: "Poll {{.PollID}} has ended. **{{.Option}}** won with {{.Votes}} votes.",
	}

	commandShowActive = &i18n.Message{
		ID:    "command.show.active",
		Other: "open until {{.EndAt}}",
	}
	commandShowEnded = &i18n.Message{
		ID:    "command.show.ended",
		Other: "ended by its creator",
	}
	commandShowExpired = &i18n.Message{
		ID:    "command.show.expired",
		Other: "expired at {{.EndAt}}",
	}
	commandShowHeader = &i18n.Message{
		ID:    "command.show.header",
		Other: "Poll {{.PollID}}: **{{.Question}}** ({{.Status}}, {{.TotalVotes}} votes)",
	}

	commandActiveNone = &i18n.Message{
		ID:    "command.active.none",
		Other: "There are no polls open for voting.",
	}
	commandActiveList = &i18n.Message{
		ID:    "command.active.list",
		Other: "Polls open for voting: {{.PollIDs}}",
	}
)

// ExecuteCommand parses a given input and runs the matching ledger operation
func (p *LedgerPlugin) ExecuteCommand(_ *plugin.Context, args *model.CommandArgs) (*model.CommandResponse, *model.AppError) {
	userID := args.UserId
	trigger := p.getConfiguration().Trigger

	fields, flags := utils.ParseInput(args.Command, trigger)
	if len(fields) == 0 {
		return p.getCommandResponse(p.helpText(userID, trigger)), nil
	}

	var msg string
	switch fields[0] {
	case "help":
		msg = p.helpText(userID, trigger)
	case "vote":
		msg = p.executeVote(userID, trigger, fields[1:])
	case "end":
		msg = p.executeEnd(userID, trigger, fields[1:])
	case "show":
		msg = p.executeShow(userID, trigger, fields[1:])
	case "active":
		msg = p.executeActive(userID)
	default:
		msg = p.executeCreate(userID, fields[0], fields[1:], flags)
	}
	return p.getCommandResponse(msg), nil
}

func (p *LedgerPlugin) helpText(userID, trigger string) string {
	return p.localize(userID, commandHelpText, map[string]interface{}{
		"Trigger":  trigger,
		"Yes":      p.localize(userID, commandDefaultYes, nil),
		"No":       p.localize(userID, commandDefaultNo, nil),
		"Duration": defaultDurationMinutes,
	})
}

func (p *LedgerPlugin) inputError(userID, trigger string) string {
	return p.localize(userID, commandInputError, map[string]interface{}{"Trigger": trigger})
}

func (p *LedgerPlugin) executeCreate(userID, question string, options []string, flags map[string]string) string {
	duration := defaultDurationMinutes
	for flag, value := range flags {
		if flag != durationFlag {
			return p.localize(userID, commandUnknownFlag, map[string]interface{}{"Flag": flag})
		}
		d, err := strconv.Atoi(value)
		if err != nil {
			return p.localize(userID, commandInvalidDuration, map[string]interface{}{"Duration": value})
		}
		duration = d
	}

	if len(options) == 0 {
		options = []string{
			p.localize(userID, commandDefaultYes, nil),
			p.localize(userID, commandDefaultNo, nil),
		}
	}

	pollID, err := p.ledger.CreatePoll(userID, question, options, duration)
	if err != nil {
		return p.localizeError(userID, err)
	}

	lines := make([]string, len(options))
	for i, o := range options {
		lines[i] = fmt.Sprintf("%d. %s", i, o)
	}
	return p.localize(userID, commandCreated, map[string]interface{}{
		"PollID":   pollID,
		"Question": question,
		"Options":  strings.Join(lines, "\n"),
	})
}

func (p *LedgerPlugin) executeVote(userID, trigger string, args []string) string {
	if len(args) != 2 {
		return p.inputError(userID, trigger)
	}
	pollID, err := strconv.Atoi(args[0])
	if err != nil {
		return p.inputError(userID, trigger)
	}
	optionIndex, err := strconv.Atoi(args[1])
	if err != nil {
		return p.inputError(userID, trigger)
	}

	if err := p.ledger.Vote(userID, pollID, optionIndex); err != nil {
		return p.localizeError(userID, err)
	}
	return p.localize(userID, commandVoteCounted, nil)
}

func (p *LedgerPlugin) executeEnd(userID, trigger string, args []string) string {
	if len(args) != 1 {
		return p.inputError(userID, trigger)
	}
	pollID, err := strconv.Atoi(args[0])
	if err != nil {
		return p.inputError(userID, trigger)
	}

	if err := p.ledger.EndPoll(userID, pollID); err != nil {
		return p.localizeError(userID, err)
	}
	winner, err := p.ledger.GetWinner(pollID)
	if err != nil {
		return p.localizeError(userID, err)
	}
	return p.localize(userID, commandEndSuccess, map[string]interface{}{
		"PollID": pollID,
		"Option": winner.Text,
		"Votes":  winner.Votes,
	})
}

func (p *LedgerPlugin) executeShow(userID, trigger string, args []string) string {
	if len(args) != 1 {
		return p.inputError(userID, trigger)
	}
	pollID, err := strconv.Atoi(args[0])
	if err != nil {
		return p.inputError(userID, trigger)
	}

	s, err := p.ledger.GetPoll(pollID)
	if err != nil {
		return p.localizeError(userID, err)
	}

	endAt := time.UnixMilli(s.EndAt).UTC().Format(time.RFC1123)
	var status string
	switch {
	case s.Active:
		status = p.localize(userID, commandShowActive, map[string]interface{}{"EndAt": endAt})
	case s.Ended:
		status = p.localize(userID, commandShowEnded, nil)
	default:
		status = p.localize(userID, commandShowExpired, map[string]interface{}{"EndAt": endAt})
	}

	lines := []string{p.localize(userID, commandShowHeader, map[string]interface{}{
		"PollID":     s.ID,
		"Question":   s.Question,
		"Status":     status,
		"TotalVotes": s.TotalVotes,
	})}
	for i, o := range s.Options {
		lines = append(lines, fmt.Sprintf("%d. %s: %d", i, o, s.VoteCounts[i]))
	}
	return strings.Join(lines, "\n")
}

func (p *LedgerPlugin) executeActive(userID string) string {
	ids, err := p.ledger.GetActivePolls()
	if err != nil {
		p.API.LogWarn("Failed to list active polls", "error", err.Error())
		return p.localize(userID, responseGenericError, nil)
	}
	if len(ids) == 0 {
		return p.localize(userID, commandActiveNone, nil)
	}

	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return p.localize(userID, commandActiveList, map[string]interface{}{
		"PollIDs": strings.Join(s, ", "),
	})
}

func (p *LedgerPlugin) getCommandResponse(text string) *model.CommandResponse {
	return &model.CommandResponse{
		ResponseType: model.CommandResponseTypeEphemeral,
		Text:         text,
		Username:     responseUsername,
		IconURL:      fmt.Sprintf("%s/plugins/%s/%s", p.siteURL(), manifest.Id, iconFilename),
		Type:         model.PostTypeDefault,
	}
}

func (p *LedgerPlugin) getCommand(trigger string) *model.Command {
	localizer := p.bundle.GetServerLocalizer()
	return &model.Command{
		Trigger:          trigger,
		DisplayName:      "Poll Ledger",
		Description:      "Polls with exactly one vote per user",
		AutoComplete:     true,
		AutoCompleteDesc: p.bundle.LocalizeDefaultMessage(localizer, commandAutoCompleteDesc),
		AutoCompleteHint: p.bundle.LocalizeDefaultMessage(localizer, commandAutoCompleteHint),
	}
}
