package payout

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
)

// NormalizationError wraps every failure of Normalize with the record identity.
type NormalizationError struct {
	ProviderName   string
	ProviderPropID string
	Err            error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize payout provider=%s prop=%s: %v", e.ProviderName, e.ProviderPropID, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// BoostKeys are the additional-data keys probed for an explicit boost, in order.
var BoostKeys = []string{"boost", "multiplier", "promo_multiplier", "enhanced_odds"}

const (
	inferredBoostThreshold = 2.0
	maxInferredBoost       = 2.0
)

type variantRule struct {
	fragment string
	variant  Variant
}

var defaultVariantRules = []variantRule{
	{fragment: "prizepicks", variant: VariantMultiplier},
	{fragment: "underdog", variant: VariantMultiplier},
	{fragment: "sleeper", variant: VariantMultiplier},
	{fragment: "draftkings", variant: VariantMoneyline},
	{fragment: "fanduel", variant: VariantMoneyline},
	{fragment: "betmgm", variant: VariantMoneyline},
	{fragment: "caesars", variant: VariantMoneyline},
	{fragment: "bet365", variant: VariantDecimalOdds},
	{fragment: "pinnacle", variant: VariantDecimalOdds},
	{fragment: "betfair", variant: VariantDecimalOdds},
}

// Normalizer converts provider odds into CanonicalPayout.
type Normalizer struct {
	rules []variantRule
}

func NewNormalizer() *Normalizer {
	return &Normalizer{rules: append([]variantRule(nil), defaultVariantRules...)}
}

// ProviderVariants exposes the provider fragment -> variant table.
func (n *Normalizer) ProviderVariants() map[string]Variant {
	out := make(map[string]Variant, len(n.rules))
	for _, rule := range n.rules {
		out[rule.fragment] = rule.variant
	}
	return out
}

// DetectVariant matches the provider name against the fragment table in
// order. The payout type does not influence the result today.
func (n *Normalizer) DetectVariant(providerName string, _ Type) Variant {
	name := strings.ToLower(strings.TrimSpace(providerName))
	for _, rule := range n.rules {
		if strings.Contains(name, rule.fragment) {
			return rule.variant
		}
	}
	return VariantStandardOdds
}

// ConvertToMultipliers maps raw odds to multipliers. A missing side stays nil.
// TODO: VariantStandardOdds shares the American formula with VariantMoneyline
// until product defines a separate conversion for it.
func (n *Normalizer) ConvertToMultipliers(over, under *float64, variant Variant) (*float64, *float64, error) {
	convert := func(side string, raw *float64) (*float64, error) {
		if raw == nil {
			return nil, nil
		}
		switch variant {
		case VariantMultiplier, VariantDecimalOdds:
			return Float(*raw), nil
		case VariantMoneyline, VariantStandardOdds:
			mult, err := AmericanToMultiplier(*raw)
			if err != nil {
				return nil, errors.Wrapf(err, "%s odds", side)
			}
			return Float(mult), nil
		default:
			return nil, errors.Newf("unsupported payout variant %q", variant)
		}
	}

	overMult, err := convert("over", over)
	if err != nil {
		return nil, nil, err
	}
	underMult, err := convert("under", under)
	if err != nil {
		return nil, nil, err
	}
	return overMult, underMult, nil
}

// AmericanToMultiplier applies o/100+1 for positive odds and 100/|o|+1 for negative.
func AmericanToMultiplier(odds float64) (float64, error) {
	if odds == 0 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return 0, errors.Newf("invalid american odds %v", odds)
	}
	if odds > 0 {
		return odds/100.0 + 1.0, nil
	}
	return 100.0/math.Abs(odds) + 1.0, nil
}

// DetectBoost looks for an explicit boost in extras, then infers one for
// BOOST payouts whose average multiplier exceeds 2.0 (capped at 2.0x).
func (n *Normalizer) DetectBoost(_ string, extras rawdata.Extras, payoutType Type, overMult, underMult *float64) *float64 {
	for _, key := range BoostKeys {
		value, ok := extras.Float(key)
		if ok && value > 1.0 {
			return Float(value)
		}
	}
	if payoutType != TypeBoost {
		return nil
	}

	var sum float64
	var count int
	for _, v := range []*float64{overMult, underMult} {
		if v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	if avg <= inferredBoostThreshold {
		return nil
	}
	return Float(math.Min(avg, maxInferredBoost))
}

// Normalize composes variant detection, conversion and boost detection. It
// never returns a partially built payout: any failure is a *NormalizationError.
func (n *Normalizer) Normalize(raw rawdata.ExternalProp) (CanonicalPayout, error) {
	fail := func(err error) (CanonicalPayout, error) {
		return CanonicalPayout{}, &NormalizationError{
			ProviderName:   raw.ProviderName,
			ProviderPropID: raw.ProviderPropID,
			Err:            err,
		}
	}

	payoutType, err := ParseType(raw.PayoutType)
	if err != nil {
		return fail(err)
	}
	variant := n.DetectVariant(raw.ProviderName, payoutType)
	overMult, underMult, err := n.ConvertToMultipliers(raw.OverOdds, raw.UnderOdds, variant)
	if err != nil {
		return fail(err)
	}

	out := CanonicalPayout{
		Type:             payoutType,
		VariantCode:      variant,
		OverMultiplier:   overMult,
		UnderMultiplier:  underMult,
		BoostMultiplier:  n.DetectBoost(raw.ProviderName, raw.Extras, payoutType, overMult, underMult),
		Over:             copyFloat(raw.OverOdds),
		Under:            copyFloat(raw.UnderOdds),
		ConversionMethod: ConversionNormalized,
	}
	return out, nil
}

// ParseType maps provider payout tags onto Type. Empty means standard.
func ParseType(tag string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "standard", "power", "default":
		return TypeStandard, nil
	case "flex", "flex_play":
		return TypeFlex, nil
	case "boost", "boosted", "promo":
		return TypeBoost, nil
	default:
		return "", errors.Newf("unknown payout type %q", tag)
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}
