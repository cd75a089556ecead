package commands

import (
	"log/slog"

	"github.com/allisson/piivault/internal/config"
	"github.com/allisson/piivault/internal/database"
)

// RunMigrations applies the embedded schema migrations for the postgres and mysql
// storage drivers. The badger and memory drivers need no schema, so nothing is done.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver == config.StorageBadger || driver == config.StorageMemory {
		logger.Info("storage driver has no schema, skipping migrations", slog.String("driver", driver))
		return nil
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	if err := database.Migrate(driver, connectionString, logger); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
