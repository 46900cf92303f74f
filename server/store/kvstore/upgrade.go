package kvstore

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/pkg/errors"
)

// upgrade migrates the stored data to the schema of toVersion.
type upgrade struct {
	toVersion   string
	upgradeFunc func(*Store) error
}

// getUpgrades returns all schema upgrades in ascending version order.
// The ledger has a single schema so far.
func getUpgrades() []*upgrade {
	return []*upgrade{}
}

// UpdateDatabase upgrades the database schema from a given version to the newest version.
func (s *Store) UpdateDatabase(pluginVersion string) error {
	v, err := s.System().GetVersion()
	if err != nil {
		return err
	}

	newestSchema, err := semver.Parse(pluginVersion)
	if err != nil {
		return errors.Wrapf(err, "failed to parse plugin version %s", pluginVersion)
	}
	// Don't store patch versions
	newestSchema.Patch = 0

	// If no version is set, set to to the newest version
	if v == "" {
		s.api.LogWarn(fmt.Sprintf("This looks to be a fresh install. Setting database schema version to %v.", newestSchema.String()))
		return s.System().SaveVersion(newestSchema.String())
	}

	currentSchemaVersion, err := semver.Parse(v)
	if err != nil {
		return errors.Wrapf(err, "failed to parse schema version %s", v)
	}

	for _, u := range s.upgrades {
		toVersion := semver.MustParse(u.toVersion)
		if !s.shouldPerformUpgrade(currentSchemaVersion, toVersion) {
			continue
		}
		if err := u.upgradeFunc(s); err != nil {
			return errors.Wrapf(err, "failed to upgrade database schema to %s", u.toVersion)
		}
		if err := s.System().SaveVersion(toVersion.String()); err != nil {
			return err
		}
		s.api.LogWarn(fmt.Sprintf("Update to database schema version %v complete.", toVersion.String()))
		currentSchemaVersion = toVersion
	}

	return nil
}

func (s *Store) shouldPerformUpgrade(currentSchemaVersion, expectedSchemaVersion semver.Version) bool {
	if currentSchemaVersion.LT(expectedSchemaVersion) {
		s.api.LogWarn(fmt.Sprintf("The database schema version of %v appears to be out of date.", currentSchemaVersion.String()))
		s.api.LogWarn(fmt.Sprintf("Attempting to upgrade the database schema version to %v.", expectedSchemaVersion.String()))
		return true
	}
	return false
}
