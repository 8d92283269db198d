package db

import (
	"fmt"
	"time"

	"luna-bot/config"
	"luna-bot/pkg/logger"
)

const connectAttempts = 5

// Open builds the store selected by cfg.Store.Driver. Postgres connections
// are retried with a growing delay.
func Open(cfg *config.Config, l *logger.Logger) (ProfileStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemoryDB(), nil
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.Store.SQLitePath)
	case config.DriverPostgres:
		var (
			database *PostgresDB
			err      error
		)
		for i := 0; i < connectAttempts; i++ {
			database, err = NewPostgresDB(cfg.DB)
			if err == nil {
				return database, nil
			}
			l.Error("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
			time.Sleep(time.Duration(i+1) * time.Second)
		}
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, err)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
