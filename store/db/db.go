package db

import (
	"github.com/pkg/errors"

	"github.com/openclaw/assistant/internal/profile"
	"github.com/openclaw/assistant/store"
	"github.com/openclaw/assistant/store/db/postgres"
	"github.com/openclaw/assistant/store/db/sqlite"
)

// PostgreSQL is the production database. SQLite is supported for local
// development and tests; it carries the full schema so the chat pipeline
// behaves identically on both.

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
