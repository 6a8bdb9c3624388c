package payout

import (
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Type is how the provider pays the pick out.
type Type string

const (
	TypeStandard Type = "standard"
	TypeFlex     Type = "flex"
	TypeBoost    Type = "boost"
)

// Variant names the odds convention that produced the multipliers.
type Variant string

const (
	VariantMoneyline    Variant = "moneyline"
	VariantDecimalOdds  Variant = "decimal_odds"
	VariantMultiplier   Variant = "multiplier"
	VariantStandardOdds Variant = "standard_odds"
	// VariantUnknown only appears on migrated rows whose legacy values could not be classified.
	VariantUnknown      Variant = "unknown"
)

// ConversionMethod separates confident normalization from the migration
// heuristic, whose accuracy is uncertain.
type ConversionMethod string

const (
	ConversionNormalized        ConversionMethod = "normalized"
	ConversionHeuristicFallback ConversionMethod = "heuristic_fallback"
)

const (
	MinMultiplier = 1.01
	MaxMultiplier = 50.0
	MinBoost      = 1.0
	MaxBoost      = 5.0
)

// CanonicalPayout is the provider-independent payout record persisted as a
// quote's payout schema. Over and Under keep the provider odds exactly as
// received for consumers of the legacy shape.
type CanonicalPayout struct {
	Type             Type             `json:"type"`
	VariantCode      Variant          `json:"variant_code,omitempty"`
	OverMultiplier   *float64         `json:"over_multiplier,omitempty"`
	UnderMultiplier  *float64         `json:"under_multiplier,omitempty"`
	BoostMultiplier  *float64         `json:"boost_multiplier,omitempty"`
	Over             *float64         `json:"over,omitempty"`
	Under            *float64         `json:"under,omitempty"`
	ConversionMethod ConversionMethod `json:"conversion_method,omitempty"`
	ProviderFormat   map[string]any   `json:"provider_format,omitempty"`
}

// IsCanonical reports whether the record carries a variant and at least one
// resolved multiplier. This is the only place canonical-ness is decided.
func (p CanonicalPayout) IsCanonical() bool {
	if strings.TrimSpace(string(p.VariantCode)) == "" {
		return false
	}
	return p.OverMultiplier != nil || p.UnderMultiplier != nil
}

// IsHeuristic reports whether the record came from the migration fallback.
func (p CanonicalPayout) IsHeuristic() bool {
	return p.ConversionMethod == ConversionHeuristicFallback
}

// Validate checks canonical-ness and multiplier/boost bounds. It is used by
// the migration tooling and tests; the live path trusts Normalize.
func (p CanonicalPayout) Validate() error {
	if !p.IsCanonical() {
		return errors.New("payout is not in canonical format")
	}
	for _, side := range []struct {
		name  string
		value *float64
	}{
		{name: "over_multiplier", value: p.OverMultiplier},
		{name: "under_multiplier", value: p.UnderMultiplier},
	} {
		if side.value == nil {
			continue
		}
		if *side.value < MinMultiplier || *side.value > MaxMultiplier {
			return errors.Newf("%s %.4f outside [%.2f, %.2f]", side.name, *side.value, MinMultiplier, MaxMultiplier)
		}
	}
	if p.BoostMultiplier != nil && (*p.BoostMultiplier < MinBoost || *p.BoostMultiplier > MaxBoost) {
		return errors.Newf("boost_multiplier %.4f outside [%.1f, %.1f]", *p.BoostMultiplier, MinBoost, MaxBoost)
	}
	return nil
}

// Encode serializes the payout for the payout_schema column.
func Encode(p CanonicalPayout) (string, error) {
	raw, err := sonic.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "encode payout schema")
	}
	return string(raw), nil
}

// Decode parses a stored payout schema. The untyped document is returned as
// well so callers can keep legacy keys the typed shape does not know about.
func Decode(raw string) (CanonicalPayout, map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return CanonicalPayout{}, nil, errors.New("payout schema is empty")
	}
	var typed CanonicalPayout
	if err := sonic.UnmarshalString(raw, &typed); err != nil {
		return CanonicalPayout{}, nil, errors.Wrap(err, "decode payout schema")
	}
	var doc map[string]any
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return CanonicalPayout{}, nil, errors.Wrap(err, "decode payout schema document")
	}
	return typed, doc, nil
}

func Float(v float64) *float64 {
	return &v
}
