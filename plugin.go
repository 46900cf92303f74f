package root

import (
	_ "embed" // Need to embed plugin.json
	"encoding/json"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"
)

//go:embed plugin.json
var manifestString string

// Manifest is the parsed plugin.json of the ledger plugin.
var Manifest *model.Manifest

func init() {
	_ = json.NewDecoder(strings.NewReader(manifestString)).Decode(&Manifest)
}
