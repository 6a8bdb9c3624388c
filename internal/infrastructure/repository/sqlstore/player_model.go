package sqlstore

import "time"

type playerTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	Name         string    `db:"name"`
	Team         string    `db:"team"`
	Position     string    `db:"position"`
	Sport        string    `db:"sport"`
	ExternalRefs string    `db:"external_refs"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type propTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	PlayerID  int64     `db:"player_id"`
	PropType  string    `db:"prop_type"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
