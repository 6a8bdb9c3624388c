package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/sqlstore"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

// openDB opens an instrumented handle. SQLite databases get their schema on
// open and a single connection, since the file allows one writer.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBDriver, cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open(cfg.DBDriver, dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithDBSystem(dbSystem(cfg.DBDriver)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.DBDriver)
	}

	if cfg.DBDriver == config.DBDriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s database", cfg.DBDriver)
	}

	if cfg.DBDriver == config.DBDriverSQLite {
		if err := sqlstore.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func dbSystem(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}
