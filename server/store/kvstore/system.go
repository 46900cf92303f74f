package kvstore

import (
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"
)

// SystemStore allows to access system informations in the KV Store.
type SystemStore struct {
	api plugin.API
}

const versionKey = "version"

// GetVersion returns the db schema version, or "" on a fresh install.
func (s *SystemStore) GetVersion() (string, error) {
	b, appErr := s.api.KVGet(versionKey)
	if appErr != nil {
		return "", errors.Wrap(appErr, "failed to get schema version")
	}
	return string(b), nil
}

// SaveVersion sets the db schema version.
func (s *SystemStore) SaveVersion(version string) error {
	if appErr := s.api.KVSet(versionKey, []byte(version)); appErr != nil {
		return errors.Wrap(appErr, "failed to save schema version")
	}
	return nil
}
