package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicFallback(t *testing.T) {
	t.Parallel()

	american := HeuristicFallback(TypeStandard, Float(-110), Float(150))
	assert.Equal(t, VariantMoneyline, american.VariantCode)
	assert.InDelta(t, 1.909, *american.OverMultiplier, 0.001)
	assert.InDelta(t, 2.5, *american.UnderMultiplier, 1e-9)
	assert.True(t, american.IsHeuristic())
	assert.Equal(t, -110.0, *american.Over)

	mult := HeuristicFallback("", nil, Float(1.85))
	assert.Equal(t, VariantMultiplier, mult.VariantCode)
	assert.Equal(t, TypeStandard, mult.Type)
	assert.Nil(t, mult.OverMultiplier)
	assert.Equal(t, 1.85, *mult.UnderMultiplier)

	unknown := HeuristicFallback(TypeFlex, Float(0.5), Float(0.4))
	assert.Equal(t, VariantUnknown, unknown.VariantCode)
	assert.False(t, unknown.IsCanonical())
	assert.Equal(t, 0.5, *unknown.Over)

	empty := HeuristicFallback(TypeStandard, nil, nil)
	assert.Equal(t, VariantUnknown, empty.VariantCode)
	assert.True(t, empty.IsHeuristic())
}
