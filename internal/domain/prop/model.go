package prop

import (
	"errors"
	"time"

	"github.com/riskibarqy/propline/internal/domain/payout"
)

// ErrDuplicate is returned by Create when (player, prop type) already exists.
var ErrDuplicate = errors.New("prop already exists for player and type")

// Type is the canonical prop category every provider vocabulary maps into.
type Type string

const (
	TypePoints                Type = "points"
	TypeRebounds              Type = "rebounds"
	TypeAssists               Type = "assists"
	TypeSteals                Type = "steals"
	TypeBlocks                Type = "blocks"
	TypeTurnovers             Type = "turnovers"
	TypeThreePointersMade     Type = "three_pointers_made"
	TypeFieldGoalsMade        Type = "field_goals_made"
	TypeFreeThrowsMade        Type = "free_throws_made"
	TypePointsRebounds        Type = "points_rebounds"
	TypePointsAssists         Type = "points_assists"
	TypeReboundsAssists       Type = "rebounds_assists"
	TypePointsReboundsAssists Type = "points_rebounds_assists"
	TypeStealsBlocks          Type = "steals_blocks"
	TypeDoubleDouble          Type = "double_double"
	TypeTripleDouble          Type = "triple_double"
	TypeFantasyScore          Type = "fantasy_score"
	TypeMinutes               Type = "minutes"
)

var AllTypes = map[Type]struct{}{
	TypePoints:                {},
	TypeRebounds:              {},
	TypeAssists:               {},
	TypeSteals:                {},
	TypeBlocks:                {},
	TypeTurnovers:             {},
	TypeThreePointersMade:     {},
	TypeFieldGoalsMade:        {},
	TypeFreeThrowsMade:        {},
	TypePointsRebounds:        {},
	TypePointsAssists:         {},
	TypeReboundsAssists:       {},
	TypePointsReboundsAssists: {},
	TypeStealsBlocks:          {},
	TypeDoubleDouble:          {},
	TypeTripleDouble:          {},
	TypeFantasyScore:          {},
	TypeMinutes:               {},
}

func (t Type) Valid() bool {
	_, ok := AllTypes[t]
	return ok
}

// Prop is one (player, prop type) market. Rows are never hard-deleted by
// ingestion; Active flips back on at every sighting.
type Prop struct {
	ID        int64
	PublicID  string
	PlayerID  int64
	Type      Type
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalized is a provider record mapped onto the internal taxonomy and
// canonical payout, ready for persistence.
type Normalized struct {
	PlayerName       string                 `validate:"required"`
	TeamAbbreviation string                 `validate:"required"`
	Type             Type                   `validate:"required"`
	OfferedLine      float64                `validate:"gte=0"`
	Source           string                 `validate:"required"`
	Payout           payout.CanonicalPayout `validate:"-"`
	ExternalIDs      map[string]string      `validate:"required,min=1"`
	SourceUpdatedAt  time.Time              `validate:"required"`
	ProcessedAt      time.Time              `validate:"required"`
	LineHash         string                 `validate:"required,len=64,hexadecimal"`
	Sport            string                 `validate:"required"`
	ProviderPlayerID string                 `validate:"required"`
	ProviderPropID   string
	Position         string
}
