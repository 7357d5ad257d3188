// Package sqlstore keeps result metadata in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"log"
	"time"

	"hypotest/internal/config"
	"hypotest/internal/errors"
	"hypotest/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database and brings the schema up to date
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	switch driver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, errors.ConfigInvalid("unsupported database driver: " + driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "failed to connect to database")
	}

	if driver == config.DriverSQLite {
		// One writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[Database] %s schema ready (migration %s)", driver, runner.Version())

	return db, nil
}
