package payout

import "math"

const (
	americanMagnitude   = 10.0
	multiplierMagnitude = 1.0
)

// HeuristicFallback guesses the odds convention of legacy values by
// magnitude: above 10 is read as American odds, 1 to 10 as a multiplier,
// anything else is kept as-is under VariantUnknown. The result is always
// tagged ConversionHeuristicFallback. The pair is classified by over, or by
// under when over is missing.
func HeuristicFallback(payoutType Type, over, under *float64) CanonicalPayout {
	out := CanonicalPayout{
		Type:             payoutType,
		Over:             copyFloat(over),
		Under:            copyFloat(under),
		ConversionMethod: ConversionHeuristicFallback,
	}
	if out.Type == "" {
		out.Type = TypeStandard
	}

	probe := over
	if probe == nil {
		probe = under
	}
	if probe == nil || math.IsNaN(*probe) {
		out.VariantCode = VariantUnknown
		return out
	}

	magnitude := math.Abs(*probe)
	switch {
	case magnitude > americanMagnitude:
		out.VariantCode = VariantMoneyline
		out.OverMultiplier = americanOrNil(over)
		out.UnderMultiplier = americanOrNil(under)
	case magnitude >= multiplierMagnitude:
		out.VariantCode = VariantMultiplier
		out.OverMultiplier = copyFloat(over)
		out.UnderMultiplier = copyFloat(under)
	default:
		out.VariantCode = VariantUnknown
	}
	return out
}

func americanOrNil(v *float64) *float64 {
	if v == nil {
		return nil
	}
	mult, err := AmericanToMultiplier(*v)
	if err != nil {
		return nil
	}
	return Float(mult)
}
