package sqlstore

import "time"

type ingestRunTableModel struct {
	ID         int64      `db:"id"`
	PublicID   string     `db:"public_id"`
	Kind       string     `db:"kind"`
	Sport      string     `db:"sport"`
	Source     string     `db:"source"`
	Status     string     `db:"status"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
	DurationMS int64      `db:"duration_ms"`
	Counts     string     `db:"counts"`
	Stats      string     `db:"stats"`
	Errors     string     `db:"errors"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}
