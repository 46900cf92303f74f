package plugin

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/matterpoll/ledger/server/utils"
)

var responseGenericError = &i18n.Message{
	ID:    "response.error.generic",
	Other: "Something went wrong. Please try again later.",
}

// localize renders m in the locale of userID.
func (p *LedgerPlugin) localize(userID string, m *i18n.Message, data map[string]interface{}) string {
	l := p.bundle.GetUserLocalizer(userID)
	if data == nil {
		return p.bundle.LocalizeDefaultMessage(l, m)
	}
	return p.bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
		DefaultMessage: m,
		TemplateData:   data,
	})
}

// localizeError renders the message carried by err in the locale of userID.
// Errors without a message for users are logged and rendered as a generic error.
func (p *LedgerPlugin) localizeError(userID string, err error) string {
	var localizable utils.Localizable
	if !errors.As(err, &localizable) {
		p.API.LogWarn("Failed to run ledger operation", "error", err.Error())
	}
	return p.bundle.LocalizeError(p.bundle.GetUserLocalizer(userID), err, responseGenericError)
}
