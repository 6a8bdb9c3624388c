package marketquote

import (
	"time"

	"github.com/riskibarqy/propline/internal/domain/prop"
)

// MarketQuote is one distinct (prop, source, line hash) ever observed. A new
// hash for the same prop and source is a new row; history is never rewritten
// by ingestion.
type MarketQuote struct {
	ID           int64
	PublicID     string
	PropID       int64
	Source       string
	LineHash     string
	OfferedLine  float64
	PayoutSchema string
	FirstSeenAt  time.Time
	LastSeenAt   time.Time
	LastChangeAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// PropType is read-only and joined from props when listing for migration.
	PropType prop.Type
}

// PayoutUpdate rewrites one quote's payout schema and line hash during the
// schema migration.
type PayoutUpdate struct {
	QuoteID      int64
	PayoutSchema string
	LineHash     string
	UpdatedAt    time.Time
}

// LineChange announces a newly created quote: either a brand-new market or a
// changed line for an existing (prop, source).
type LineChange struct {
	QuoteID     int64     `json:"quote_id"`
	QuotePublic string    `json:"quote_public_id"`
	PropID      int64     `json:"prop_id"`
	PlayerID    int64     `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Team        string    `json:"team"`
	PropType    prop.Type `json:"prop_type"`
	Source      string    `json:"source"`
	Sport       string    `json:"sport"`
	OfferedLine float64   `json:"offered_line"`
	LineHash    string    `json:"line_hash"`
	Payout      string    `json:"payout_schema"`
	ObservedAt  time.Time `json:"observed_at"`
	RunID       int64     `json:"run_id"`
}
