package plugin

import (
	"fmt"
	"sync"
	"time"

	"github.com/blang/semver/v4"
	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-plugin-api/cluster"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	root "github.com/matterpoll/ledger"
	"github.com/matterpoll/ledger/server/ledger"
	"github.com/matterpoll/ledger/server/store"
	"github.com/matterpoll/ledger/server/store/kvstore"
	"github.com/matterpoll/ledger/server/utils"
)

// LedgerPlugin is the object to run the plugin
type LedgerPlugin struct {
	plugin.MattermostPlugin
	router *mux.Router
	Store  store.Store
	ledger *ledger.Ledger
	bundle *utils.Bundle
	expiry *expiryScheduler

	// clock is read once per ledger operation.
	clock func() time.Time

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration
	ServerConfig  *model.Config
}

var manifest = root.Manifest

const (
	minimumServerVersion = "6.5.0"

	// ledgerLockKey is the KV key of the cluster wide mutex that orders all ledger mutations.
	ledgerLockKey = "ledger_lock"
)

// NewLedgerPlugin returns an inactive plugin that uses the wall clock.
func NewLedgerPlugin() *LedgerPlugin {
	return &LedgerPlugin{
		clock: time.Now,
	}
}

// OnActivate ensures a configuration is set and initializes the API
func (p *LedgerPlugin) OnActivate() error {
	if err := p.checkServerVersion(); err != nil {
		return err
	}

	bundle, err := utils.InitBundle(p.API, "assets/i18n")
	if err != nil {
		return err
	}
	p.bundle = bundle

	store, err := kvstore.NewStore(p.API, manifest.Version)
	if err != nil {
		return errors.Wrap(err, "failed to create store")
	}
	p.Store = store

	mutex, err := cluster.NewMutex(p.API, ledgerLockKey)
	if err != nil {
		return errors.Wrap(err, "failed to create cluster mutex")
	}
	p.ledger = ledger.New(ledger.Dependencies{
		Store:    p.Store,
		Lock:     mutex,
		Clock:    p.now,
		Notifier: p,
		Logger:   p.API,
	})

	p.router = p.InitAPI()

	if err := p.API.RegisterCommand(p.getCommand(p.getConfiguration().Trigger)); err != nil {
		return errors.Wrap(err, "failed to register command")
	}

	p.expiry = newExpiryScheduler(p.now, p.publishExpiry)
	if err := p.scheduleActivePolls(); err != nil {
		p.API.LogWarn("Failed to schedule expiry of active polls", "error", err.Error())
	}
	return nil
}

// OnDeactivate stops pending expiry events and unregisters the command
func (p *LedgerPlugin) OnDeactivate() error {
	if p.expiry != nil {
		p.expiry.Stop()
	}

	if err := p.API.UnregisterCommand("", p.getConfiguration().Trigger); err != nil {
		return errors.Wrap(err, "failed to deactivate command")
	}
	return nil
}

// checkServerVersion checks Mattermost Server has at least the required version
func (p *LedgerPlugin) checkServerVersion() error {
	serverVersion, err := semver.Parse(p.API.GetServerVersion())
	if err != nil {
		return errors.Wrap(err, "failed to parse server version")
	}

	r := semver.MustParseRange(">=" + minimumServerVersion)
	if !r(serverVersion) {
		return fmt.Errorf("this plugin requires Mattermost v%s or later", minimumServerVersion)
	}

	return nil
}

// isActivated returns true once OnActivate has loaded the i18n bundle and created the ledger.
func (p *LedgerPlugin) isActivated() bool {
	return p.bundle != nil && p.ledger != nil
}

func (p *LedgerPlugin) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock()
}

func (p *LedgerPlugin) siteURL() string {
	if p.ServerConfig == nil || p.ServerConfig.ServiceSettings.SiteURL == nil {
		return ""
	}
	return *p.ServerConfig.ServiceSettings.SiteURL
}
