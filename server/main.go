package main

import (
	mmplugin "github.com/mattermost/mattermost-server/v6/plugin"

	"github.com/matterpoll/ledger/server/plugin"
)

func main() {
	mmplugin.ClientMain(plugin.NewLedgerPlugin())
}
