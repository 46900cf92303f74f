package plugin

import (
	"testing"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin/plugintest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/matterpoll/ledger/server/store/memstore"
	"github.com/matterpoll/ledger/server/utils/testutils"
)

func TestOnConfigurationChange(t *testing.T) {
	command := setupTestPlugin(t, &plugintest.API{}, memstore.NewStore()).getCommand("poll")

	for name, test := range map[string]struct {
		SetupAPI              func(*plugintest.API) *plugintest.API
		Configuration         *configuration
		ExpectedConfiguration *configuration
		ShouldError           bool
	}{
		"Load and save successful, with old configuration": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = "poll"
					arg.ExpiryEvents = true
				})
				api.On("UnregisterCommand", "", "oldTrigger").Return(nil)
				api.On("RegisterCommand", command).Return(nil)
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "poll", ExpiryEvents: true},
			ShouldError:           false,
		},
		"Load and save successful, without old configuration": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = "poll"
				})
				api.On("RegisterCommand", command).Return(nil)
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         nil,
			ExpectedConfiguration: &configuration{Trigger: "poll"},
			ShouldError:           false,
		},
		"Trigger unchanged, command is kept": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = "poll"
				})
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "poll", ExpiryEvents: true},
			ExpectedConfiguration: &configuration{Trigger: "poll"},
			ShouldError:           false,
		},
		"LoadPluginConfiguration fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(errors.New("LoadPluginConfiguration failed"))
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"Load empty trigger": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = ""
				})
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"UnregisterCommand fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = "poll"
				})
				api.On("UnregisterCommand", "", "oldTrigger").Return(&model.AppError{})
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"RegisterCommand fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
					arg := args.Get(0).(*configuration)
					arg.Trigger = "poll"
				})
				api.On("UnregisterCommand", "", "oldTrigger").Return(nil)
				api.On("RegisterCommand", command).Return(&model.AppError{})
				api.On("GetConfig").Return(testutils.GetServerConfig())
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			p := setupTestPlugin(t, api, memstore.NewStore())
			p.setConfiguration(test.Configuration)

			err := p.OnConfigurationChange()
			assert.Equal(test.ExpectedConfiguration, p.getConfiguration())
			if test.ShouldError {
				assert.NotNil(err)
			} else {
				assert.Nil(err)
			}
		})
	}

	t.Run("not activated, command is not registered", func(t *testing.T) {
		api := &plugintest.API{}
		api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
			arg := args.Get(0).(*configuration)
			arg.Trigger = "poll"
		})
		api.On("GetConfig").Return(testutils.GetServerConfig())
		defer api.AssertExpectations(t)
		p := NewLedgerPlugin()
		p.SetAPI(api)

		err := p.OnConfigurationChange()
		assert.Nil(t, err)
		assert.Equal(t, &configuration{Trigger: "poll"}, p.getConfiguration())
		assert.Equal(t, testutils.GetSiteURL(), p.siteURL())
	})
}

func TestConfiguration(t *testing.T) {
	t.Run("null configuration", func(t *testing.T) {
		plugin := &LedgerPlugin{}

		assert.NotNil(t, plugin.getConfiguration())
	})

	t.Run("changing configuration", func(t *testing.T) {
		plugin := &LedgerPlugin{}

		configuration1 := &configuration{Trigger: "ledger"}
		plugin.setConfiguration(configuration1)
		assert.Equal(t, configuration1, plugin.getConfiguration())

		configuration2 := &configuration{Trigger: "poll"}
		plugin.setConfiguration(configuration2)
		assert.Equal(t, configuration2, plugin.getConfiguration())
		assert.NotEqual(t, configuration1, plugin.getConfiguration())
		assert.False(t, plugin.getConfiguration() == configuration1)
		assert.True(t, plugin.getConfiguration() == configuration2)
	})

	t.Run("setting same configuration", func(t *testing.T) {
		plugin := &LedgerPlugin{}

		configuration1 := &configuration{}
		plugin.setConfiguration(configuration1)
		assert.Panics(t, func() {
			plugin.setConfiguration(configuration1)
		})
	})

	t.Run("clearing configuration", func(t *testing.T) {
		plugin := &LedgerPlugin{}

		configuration1 := &configuration{Trigger: "ledger"}
		plugin.setConfiguration(configuration1)
		assert.NotPanics(t, func() {
			plugin.setConfiguration(nil)
		})
		assert.NotNil(t, plugin.getConfiguration())
		assert.NotEqual(t, plugin, configuration1)
	})
}
