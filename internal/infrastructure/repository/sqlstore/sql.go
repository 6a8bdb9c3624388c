package sqlstore

import (
	"database/sql"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation recognizes unique constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func encodeJSON(v any) (string, error) {
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return "", errors.Wrap(err, "encode json column")
	}
	return raw, nil
}

func decodeJSON(raw string, out any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return errors.Wrap(err, "decode json column")
	}
	return nil
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "%s id=%d rows affected", entity, id)
	}
	if n == 0 {
		return errors.Newf("%s id=%d not found", entity, id)
	}
	return nil
}
