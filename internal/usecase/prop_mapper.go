package usecase

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/domain/taxonomy"
)

const (
	externalPropSuffix = "_prop"
	positionKey        = "position"
)

// Provider timestamps without a zone are read as UTC.
var sourceTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// PropMapper turns one raw provider record into a validated prop.Normalized.
type PropMapper struct {
	registry   *taxonomy.Registry
	normalizer *payout.Normalizer
	validate   *validator.Validate
	now        func() time.Time
}

func NewPropMapper(registry *taxonomy.Registry, normalizer *payout.Normalizer) *PropMapper {
	return &PropMapper{
		registry:   registry,
		normalizer: normalizer,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Map runs taxonomy, payout, timestamp and hash steps in order. Every failure
// is a *MappingError.
func (m *PropMapper) Map(raw rawdata.ExternalProp) (prop.Normalized, error) {
	fail := func(stage string, err error) (prop.Normalized, error) {
		return prop.Normalized{}, &MappingError{Stage: stage, ProviderPropID: raw.ProviderPropID, Err: err}
	}

	source := strings.TrimSpace(raw.ProviderName)
	sport := strings.ToUpper(strings.TrimSpace(raw.Sport))
	if sport == "" {
		sport = taxonomy.DefaultSport
	}

	propType, err := m.registry.NormalizePropCategory(raw.PropCategory, sport, source)
	if err != nil {
		return fail(StageTaxonomy, err)
	}
	team, err := m.registry.NormalizeTeamCode(raw.TeamCode, sport)
	if err != nil {
		return fail(StageTaxonomy, err)
	}
	canonical, err := m.normalizer.Normalize(raw)
	if err != nil {
		return fail(StagePayout, err)
	}
	updatedAt, err := ParseSourceTimestamp(raw.UpdatedAt)
	if err != nil {
		return fail(StageValidation, err)
	}

	playerID := strings.TrimSpace(raw.ExternalPlayerID)
	propID := strings.TrimSpace(raw.ProviderPropID)
	position, _ := raw.Extras.String(positionKey)

	out := prop.Normalized{
		PlayerName:       strings.TrimSpace(raw.PlayerName),
		TeamAbbreviation: team,
		Type:             propType,
		OfferedLine:      raw.OfferedLine,
		Source:           source,
		Payout:           canonical,
		ExternalIDs: map[string]string{
			source:                      playerID,
			source + externalPropSuffix: propID,
		},
		SourceUpdatedAt:  updatedAt,
		ProcessedAt:      m.now().UTC(),
		Sport:            sport,
		ProviderPlayerID: playerID,
		ProviderPropID:   propID,
		Position:         strings.TrimSpace(position),
	}
	out.LineHash = marketquote.LineHash(out.Type, out.OfferedLine, out.Payout)

	if err := m.validate.Struct(out); err != nil {
		return fail(StageValidation, err)
	}
	return out, nil
}

// ParseSourceTimestamp accepts ISO-8601 with or without a zone (including a
// trailing Z).
func ParseSourceTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("updated_at is required")
	}
	for _, layout := range sourceTimestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("updated_at %q is not ISO-8601", value)
}
