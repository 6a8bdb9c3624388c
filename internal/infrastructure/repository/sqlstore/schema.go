package sqlstore

import (
	"context"
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// EnsureSchema creates the tables on an embedded SQLite database. Postgres
// deployments are migrated with cmd/migration instead.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "apply sqlite schema statement %q", firstLine(stmt))
		}
	}
	return nil
}

func firstLine(stmt string) string {
	if idx := strings.IndexByte(stmt, '\n'); idx >= 0 {
		return stmt[:idx]
	}
	return stmt
}
