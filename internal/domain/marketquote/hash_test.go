package marketquote

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/stretchr/testify/assert"
)

func samplePayout() payout.CanonicalPayout {
	return payout.CanonicalPayout{
		Type:            payout.TypeStandard,
		VariantCode:     payout.VariantMoneyline,
		OverMultiplier:  payout.Float(1.9090909),
		UnderMultiplier: payout.Float(2.5),
	}
}

func TestLineHash_KnownPreimage(t *testing.T) {
	t.Parallel()

	sum := sha256.Sum256([]byte("points|25.5|standard|moneyline|1.909|2.500|None"))
	assert.Equal(t, hex.EncodeToString(sum[:]), LineHash(prop.TypePoints, 25.5, samplePayout()))
}

func TestLineHash_Deterministic(t *testing.T) {
	t.Parallel()

	a := LineHash(prop.TypeRebounds, 9.5, samplePayout())
	b := LineHash(prop.TypeRebounds, 9.5, samplePayout())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestLineHash_PrecisionCollapse(t *testing.T) {
	t.Parallel()

	base := LineHash(prop.TypePoints, 25.5, samplePayout())

	assert.Equal(t, base, LineHash(prop.TypePoints, 25.51, samplePayout()))

	p := samplePayout()
	p.OverMultiplier = payout.Float(1.90901)
	assert.Equal(t, base, LineHash(prop.TypePoints, 25.5, p))
}

func TestLineHash_DiffersPerComponent(t *testing.T) {
	t.Parallel()

	base := LineHash(prop.TypePoints, 25.5, samplePayout())

	assert.NotEqual(t, base, LineHash(prop.TypeAssists, 25.5, samplePayout()))
	assert.NotEqual(t, base, LineHash(prop.TypePoints, 26.5, samplePayout()))

	variant := samplePayout()
	variant.VariantCode = payout.VariantDecimalOdds
	assert.NotEqual(t, base, LineHash(prop.TypePoints, 25.5, variant))

	kind := samplePayout()
	kind.Type = payout.TypeFlex
	assert.NotEqual(t, base, LineHash(prop.TypePoints, 25.5, kind))

	boosted := samplePayout()
	boosted.BoostMultiplier = payout.Float(1.5)
	assert.NotEqual(t, base, LineHash(prop.TypePoints, 25.5, boosted))

	under := samplePayout()
	under.UnderMultiplier = nil
	assert.NotEqual(t, base, LineHash(prop.TypePoints, 25.5, under))
}
