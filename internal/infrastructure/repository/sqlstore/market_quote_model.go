package sqlstore

import "time"

type marketQuoteTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	PropID       int64     `db:"prop_id"`
	Source       string    `db:"source"`
	LineHash     string    `db:"line_hash"`
	OfferedLine  float64   `db:"offered_line"`
	PayoutSchema string    `db:"payout_schema"`
	FirstSeenAt  time.Time `db:"first_seen_at"`
	LastSeenAt   time.Time `db:"last_seen_at"`
	LastChangeAt time.Time `db:"last_change_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// marketQuoteJoinedRow is a quote row with the owning prop's type.
type marketQuoteJoinedRow struct {
	marketQuoteTableModel
	PropType string `db:"prop_type"`
}
